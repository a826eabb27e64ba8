package fields

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", value)
	}
}

// Export writes the snapshot of every field as a flat object of strings.
// JSON is indented by four spaces; YAML keeps catalog order.
func (r *Registry) Export(w io.Writer, format Format) error {
	snapshot := r.Snapshot()
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(snapshot); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range catalog {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: snapshot[f.Name]},
			)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(4)
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportPath returns the file next to the score that ExportFile writes.
func (r *Registry) ExportPath(format Format) string {
	path := r.score.Path
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + string(format)
}

// ExportFile writes the export next to the score as <stem>.json or
// <stem>.yaml and returns its path.
func (r *Registry) ExportFile(format Format) (string, error) {
	target := r.ExportPath(format)
	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := r.Export(f, format); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return target, nil
}
