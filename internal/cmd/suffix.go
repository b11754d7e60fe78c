package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/denniswebb/fwfacts/internal/config"
	"github.com/denniswebb/fwfacts/internal/functions"
	"github.com/denniswebb/fwfacts/internal/logging"
)

// SuffixKeysCmd represents the fwfacts suffix-keys subcommand.
var SuffixKeysCmd = &cobra.Command{
	Use:   "suffix-keys [file]",
	Short: "Append a suffix to every key of a JSON or YAML mapping",
	Long: `Read a JSON or YAML mapping from file, or stdin when file is omitted or "-",
and print it with every top-level key suffixed. Input that is not a mapping
produces an empty mapping.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			// #nosec G304 - the path is supplied by the operator on the command line.
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}

		return runSuffixKeys(in, cmd.OutOrStdout(), functions.Builtins(), cfg, logging.GetLogger())
	},
}

func init() {
	flags := SuffixKeysCmd.Flags()
	flags.StringP("suffix", "s", "", "Suffix appended to every key")
	mustBindFlags(flags, "suffix")
}

func runSuffixKeys(in io.Reader, w io.Writer, reg *functions.Registry, cfg config.Config, logger *slog.Logger) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var document any
	if err := yaml.Unmarshal(data, &document); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if _, ok := document.(map[string]any); !ok {
		logger.Warn("input is not a mapping", slog.String("type", fmt.Sprintf("%T", document)))
	}

	result, err := reg.Call(functions.SuffixHashTitleName, document, cfg.Suffix)
	if err != nil {
		return err
	}

	if cfg.Output == config.OutputYAML {
		return writeYAML(w, result)
	}
	return writeJSON(w, result)
}
