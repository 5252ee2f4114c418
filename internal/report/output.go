// Package report writes command results as YAML, JSON or CSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/spectra-mcp/internal/frequency"
)

// Format is an output encoding selected with --output.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts yaml, json and csv. The empty string is yaml.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// Write encodes data in a structured format. CSV is only defined for
// frequency results; use WriteResults for those.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case FormatCSV:
		return fmt.Errorf("csv output is only available for frequency results")
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteResults encodes frequency results, adding CSV support.
func WriteResults(w io.Writer, format Format, results []frequency.Result) error {
	if format == FormatCSV {
		return frequency.WriteCSV(w, results)
	}
	if results == nil {
		results = []frequency.Result{}
	}
	return Write(w, format, results)
}
