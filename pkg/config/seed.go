package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockserve/pkg/mock"
)

// Field spellings accepted in seed files, in precedence order.
var (
	statusKeys       = []string{"statusCode", "status", "http_status_code", "status_code", "httpStatusCode"}
	responseTypeKeys = []string{"responseType", "response_type"}
	responseDataKeys = []string{"responseData", "response_data"}
)

// SeedEntry is one definition read from a seed file.
type SeedEntry struct {
	Method       string
	Path         string
	StatusCode   int
	ResponseType mock.ResponseType
	Data         json.RawMessage

	// File is a local file whose content the mock serves. Relative paths are
	// resolved against the seed file's directory.
	File string

	// Source is the seed file the entry came from.
	Source string
}

// UnmarshalYAML reads an entry, accepting every field spelling.
func (e *SeedEntry) UnmarshalYAML(node *yaml.Node) error {
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return err
	}

	var ok bool
	if e.Method, ok = fields["method"].(string); !ok || e.Method == "" {
		return fmt.Errorf("line %d: method is required", node.Line)
	}
	if e.Path, ok = fields["path"].(string); !ok || e.Path == "" {
		return fmt.Errorf("line %d: path is required", node.Line)
	}
	if file, present := fields["file"]; present {
		if e.File, ok = file.(string); !ok || e.File == "" {
			return fmt.Errorf("line %d: file must be a path", node.Line)
		}
	}

	e.StatusCode = mock.DefaultStatusCode
	if name, v, found := firstKey(fields, statusKeys); found {
		code, ok := v.(int)
		if !ok {
			return fmt.Errorf("line %d: %s must be an integer", node.Line, name)
		}
		e.StatusCode = code
	}

	if name, v, found := firstKey(fields, responseTypeKeys); found {
		s, _ := v.(string)
		rt, err := mock.ParseResponseType(s)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", node.Line, name, err)
		}
		e.ResponseType = rt
	}
	switch {
	case e.File != "":
		e.ResponseType = mock.ResponseFile
	case e.ResponseType == "":
		return fmt.Errorf("line %d: responseType is required", node.Line)
	}

	if name, v, found := firstKey(fields, responseDataKeys); found && e.File == "" {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", node.Line, name, err)
		}
		e.Data = raw
	}
	return nil
}

// Definition converts the entry into a mock definition. File entries need
// their content stored first; use Seeder for those.
func (e *SeedEntry) Definition() (*mock.Definition, error) {
	if e.File != "" {
		return nil, errors.New("file entries must be ingested")
	}
	data, err := mock.DecodePayload(e.ResponseType, e.Data)
	if err != nil {
		return nil, err
	}
	key := mock.NormalizeKey(e.Method, e.Path)
	return &mock.Definition{
		Method:       key.Method,
		Path:         key.Path,
		StatusCode:   e.StatusCode,
		ResponseType: e.ResponseType,
		Data:         data,
	}, nil
}

// FilePath returns File resolved against the seed file's directory.
func (e *SeedEntry) FilePath() string {
	if e.File == "" || filepath.IsAbs(e.File) || e.Source == "" {
		return e.File
	}
	return filepath.Join(filepath.Dir(e.Source), e.File)
}

// seedFile is the content of a seed file in any of its three shapes.
type seedFile struct {
	Entries []SeedEntry
}

func (f *seedFile) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&f.Entries)
	case yaml.MappingNode:
		if hasKey(node, "mocks") {
			var wrapped struct {
				Mocks []SeedEntry `yaml:"mocks"`
			}
			if err := node.Decode(&wrapped); err != nil {
				return err
			}
			f.Entries = wrapped.Mocks
			return nil
		}
		var single SeedEntry
		if err := node.Decode(&single); err != nil {
			return err
		}
		f.Entries = []SeedEntry{single}
		return nil
	default:
		return fmt.Errorf("line %d: expected a mock, a list of mocks or a mocks key", node.Line)
	}
}

func firstKey(fields map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}
