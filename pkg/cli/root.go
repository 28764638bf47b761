package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// NewRootCommand builds the mockserve command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mockserve",
		Short: "mockserve is a runtime-configurable HTTP mock responder",
		Long: `mockserve answers arbitrary HTTP requests with canned responses that are
defined at runtime through POST /mocks and PATCH /mocks.

Responses can be JSON, plain text or uploaded files. Definitions live in
memory, a JSON file or MongoDB; uploads live on local disk or in S3.

Configuration can be provided via flags, environment variables or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true, // We handle errors in Execute()
	}
	root.AddCommand(newServeCmd(), newConfigCmd(), newVersionCmd())
	return root
}

// Execute runs the command tree with args and exits non-zero on error.
// With no subcommand, or only flags, it runs serve.
func Execute(args []string) {
	root := NewRootCommand()
	root.SetArgs(defaultToServe(root, args))
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// defaultToServe prepends "serve" unless args name a subcommand or ask for
// root help.
func defaultToServe(root *cobra.Command, args []string) []string {
	if len(args) == 0 {
		return []string{"serve"}
	}
	switch args[0] {
	case "-h", "--help", "help", "completion", "__complete":
		return args
	}
	for _, c := range root.Commands() {
		if c.Name() == args[0] || c.HasAlias(args[0]) {
			return args
		}
	}
	return append([]string{"serve"}, args...)
}
