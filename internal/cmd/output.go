package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"sigs.k8s.io/yaml"

	"github.com/denniswebb/fwfacts/internal/config"
	"github.com/denniswebb/fwfacts/internal/facts"
)

const unknownValue = "unknown"

func renderFacts(w io.Writer, format string, values []facts.Value) error {
	switch format {
	case config.OutputJSON:
		return writeJSON(w, factMap(values))
	case config.OutputYAML:
		return writeYAML(w, factMap(values))
	case config.OutputTable:
		return writeFactTable(w, values)
	default:
		for _, v := range values {
			if _, err := fmt.Fprintf(w, "%s => %s\n", v.Name, displayValue(v)); err != nil {
				return err
			}
		}
		return nil
	}
}

// factMap maps each fact name to its policy, nil when unknown.
func factMap(values []facts.Value) map[string]*string {
	out := make(map[string]*string, len(values))
	for _, v := range values {
		if !v.Known {
			out[v.Name] = nil
			continue
		}
		policy := v.Policy
		out[v.Name] = &policy
	}
	return out
}

func displayValue(v facts.Value) string {
	if !v.Known {
		return unknownValue
	}
	return v.Policy
}

func writeFactTable(w io.Writer, values []facts.Value) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Fact", "Family", "Chain", "Policy"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, v := range values {
		table.Append([]string{v.Name, v.Labels["family"], v.Labels["chain"], displayValue(v)})
	}
	table.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeYAML(w io.Writer, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}
