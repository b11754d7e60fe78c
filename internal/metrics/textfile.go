package metrics

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the registry in the node_exporter textfile collector
// format. The file is written to a temporary name and renamed into place.
func (m *Metrics) WriteTextfile(path string) error {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil
	}

	if err := ValidateTextfilePath(cleanPath); err != nil {
		return err
	}

	if err := prometheus.WriteToTextfile(cleanPath, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", cleanPath, err)
	}
	return nil
}

// ValidateTextfilePath rejects paths the textfile collector would ignore or
// that climb out of their directory.
func ValidateTextfilePath(path string) error {
	clean := filepath.Clean(path)
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		if part == ".." {
			return fmt.Errorf("textfile path %q contains unsupported traversal component", path)
		}
	}
	if filepath.Ext(clean) != ".prom" {
		return fmt.Errorf("textfile path %q must end in .prom", path)
	}
	return nil
}
