package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/denniswebb/fwfacts/internal/config"
	"github.com/denniswebb/fwfacts/internal/functions"
	"github.com/denniswebb/fwfacts/internal/logging"
)

// ListCmd represents the fwfacts list subcommand.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered facts and template functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		reg, err := buildFactRegistry(cfg, logging.GetLogger())
		if err != nil {
			return err
		}

		return writeList(cmd.OutOrStdout(), cfg.Output, reg.Names(), functions.Builtins().Names())
	},
}

type listing struct {
	Facts     []string `json:"facts"`
	Functions []string `json:"functions"`
}

func writeList(w io.Writer, format string, factNames, functionNames []string) error {
	l := listing{Facts: factNames, Functions: functionNames}
	switch format {
	case config.OutputJSON:
		return writeJSON(w, l)
	case config.OutputYAML:
		return writeYAML(w, l)
	}

	if _, err := fmt.Fprintln(w, "facts:"); err != nil {
		return err
	}
	for _, name := range factNames {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "functions:"); err != nil {
		return err
	}
	for _, name := range functionNames {
		if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
			return err
		}
	}
	return nil
}
