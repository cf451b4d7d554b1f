package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hokaccha/go-prettyjson"
	"gopkg.in/yaml.v3"
)

var outputFormatsCompletion = []string{"json", "text", "yaml"}

// rollResult is the structured form of one evaluated expression.
type rollResult struct {
	Expression string `json:"expression" yaml:"expression"`
	Seed       uint64 `json:"seed" yaml:"seed"`
	Result     int64  `json:"result" yaml:"result"`
}

// formatOutput renders v in the given format. The text format is produced
// by text, which lets each command decide what a plain rendering looks like.
func formatOutput(v any, format string, noColor bool, text func() string) (string, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return text(), nil
	case "json":
		output, err := formatJSON(v, noColor)
		if err != nil {
			return "", err
		}
		return string(output), nil
	case "yaml":
		output, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return strings.TrimSuffix(string(output), "\n"), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func formatJSON(v any, noColor bool) ([]byte, error) {
	if noColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
