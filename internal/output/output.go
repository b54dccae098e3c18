package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/droid-a11y/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// Stdout is where Print writes. Tests swap it for a buffer.
var Stdout io.Writer = os.Stdout

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported output format %q (want yaml or json)", s)
}

// DumpResult is the output of the `dump` command.
type DumpResult struct {
	Package   string          `yaml:"pkg,omitempty"       json:"pkg,omitempty"`
	TS        int64           `yaml:"ts"                  json:"ts"`
	Truncated bool            `yaml:"truncated,omitempty" json:"truncated,omitempty"`
	Elements  []model.Element `yaml:"elements"            json:"elements"`
}

// DumpFlatResult is the output of `dump --flat`.
type DumpFlatResult struct {
	Package   string              `yaml:"pkg,omitempty"       json:"pkg,omitempty"`
	TS        int64               `yaml:"ts"                  json:"ts"`
	Truncated bool                `yaml:"truncated,omitempty" json:"truncated,omitempty"`
	Elements  []model.FlatElement `yaml:"elements"            json:"elements"`
}

// ActionResult reports the outcome of a command that drives the device.
type ActionResult struct {
	OK     bool        `yaml:"ok"               json:"ok"`
	Action string      `yaml:"action"           json:"action"`
	Error  string      `yaml:"error,omitempty"  json:"error,omitempty"`
	Result interface{} `yaml:"result,omitempty" json:"result,omitempty"`
}

// Print serializes v to Stdout in the current output format.
func Print(v interface{}) error {
	return Fprint(Stdout, OutputFormat, v)
}

// Fprint serializes v to w in format f.
func Fprint(w io.Writer, f Format, v interface{}) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, v, PrettyOutput)
	case FormatYAML:
		return WriteYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// WriteJSON serializes v to w as JSON, indented when pretty is set.
func WriteJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// WriteYAML serializes v to w as YAML.
func WriteYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
