package cli

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockserve/internal/cliconfig"
	"github.com/getmockd/mockserve/pkg/cli/internal/output"
)

// ConfigOutput is the JSON shape of `mockserve config --json`.
type ConfigOutput struct {
	Config  *cliconfig.CLIConfig `json:"config"`
	Store   string               `json:"store"`
	Sources map[string]string    `json:"sources"`
}

func newConfigCmd() *cobra.Command {
	f := &configFlags{}
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective configuration",
		Long: `Show the configuration serve would run with, after applying defaults,
.env, environment variables and flags, together with the source of each value.
Credentials in the MongoDB URI are redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, f)
			if cfg == nil {
				return err
			}
			shown := *cfg
			shown.MongoURI = redactURI(cfg.MongoURI)

			w := cmd.OutOrStdout()
			if jsonOutput {
				if jerr := output.JSON(w, ConfigOutput{Config: &shown, Store: cfg.StoreKind(), Sources: cfg.Sources}); jerr != nil {
					return jerr
				}
				return err
			}
			printConfig(w, &shown)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func printConfig(w io.Writer, cfg *cliconfig.CLIConfig) {
	tw := output.Table(w)
	_, _ = fmt.Fprintln(tw, "SETTING\tVALUE\tSOURCE")
	for _, row := range configRows(cfg) {
		source := cfg.Sources[row[0]]
		if source == "" {
			source = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", row[0], row[1], source)
	}
	_, _ = fmt.Fprintf(tw, "store\t%s\t-\n", cfg.StoreKind())
	_ = tw.Flush()
}

// configRows lists settings in display order, keyed like CLIConfig.Sources.
func configRows(cfg *cliconfig.CLIConfig) [][2]string {
	return [][2]string{
		{"port", strconv.Itoa(cfg.Port)},
		{"readTimeout", cfg.ReadTimeout.String()},
		{"writeTimeout", cfg.WriteTimeout.String()},
		{"maxUploadSize", strconv.FormatInt(cfg.MaxUploadSize, 10)},
		{"mongodbUri", cfg.MongoURI},
		{"mongodbDb", cfg.MongoDB},
		{"dataFile", cfg.DataFile},
		{"seed", cfg.Seed},
		{"uploadDir", cfg.UploadDir},
		{"s3Bucket", cfg.S3Bucket},
		{"s3BucketUrl", cfg.S3BucketURL},
		{"s3Endpoint", cfg.S3Endpoint},
		{"s3Region", cfg.S3Region},
		{"cdnDomain", cfg.CDNDomain},
		{"logQueue", strconv.Itoa(cfg.LogQueue)},
		{"maxLogEntries", strconv.Itoa(cfg.MaxLogEntries)},
		{"logLevel", cfg.LogLevel},
		{"logFormat", cfg.LogFormat},
		{"lokiEndpoint", cfg.LokiEndpoint},
	}
}

// redactURI hides the password in a connection URI.
func redactURI(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}
