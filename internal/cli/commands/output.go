package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats for read commands
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("invalid output format '%s', must be one of: table, json, yaml", format)
}

// writeStructured renders v as JSON or YAML. It returns false for the table
// format so the caller can render its own table.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode output: %w", err)
		}
		return true, nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode output: %w", err)
		}
		return true, enc.Close()
	}
	return false, nil
}
