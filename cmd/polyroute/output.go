package main

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/polyroute/internal/errors"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return unknownFormat(format)
	}
}

func unknownFormat(format string) error {
	return errors.New("E140").
		WithDetailf("Unknown output format %q.", format).
		WithSuggestion("Use one of: table, json, yaml")
}
