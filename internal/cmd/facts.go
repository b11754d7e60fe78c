package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/denniswebb/fwfacts/internal/config"
	"github.com/denniswebb/fwfacts/internal/facts"
	"github.com/denniswebb/fwfacts/internal/iptables"
	"github.com/denniswebb/fwfacts/internal/logging"
	"github.com/denniswebb/fwfacts/internal/metrics"
)

// FactsCmd represents the fwfacts facts subcommand.
var FactsCmd = &cobra.Command{
	Use:   "facts [name...]",
	Short: "Resolve firewall policy facts",
	Long: `Resolve the iptables/ip6tables chain policy facts. With no arguments every
registered fact is resolved. A fact whose listing command fails or prints nothing
is reported as unknown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		reg, err := buildFactRegistry(cfg, logger)
		if err != nil {
			return err
		}

		return runFacts(ctx, cmd.OutOrStdout(), reg, cfg, args, logger)
	},
}

func init() {
	flags := FactsCmd.Flags()
	flags.String("source", config.SourceList, "Listing source: list (iptables -L) or rules (iptables -S via go-iptables)")
	flags.Duration("timeout", 10*time.Second, "Overall timeout for resolving facts")
	flags.Bool("strict", false, "Fail when a listing cannot be parsed")
	flags.String("textfile", "", "Write Prometheus metrics to this node_exporter textfile (*.prom)")
	mustBindFlags(flags, "source", "timeout", "strict", "textfile")
}

func newLister(source string, logger *slog.Logger) iptables.Lister {
	if source == config.SourceRules {
		return iptables.NewRuleSpecLister(logger)
	}
	return iptables.NewExecLister(iptables.NewExecutor(), logger)
}

func buildFactRegistry(cfg config.Config, logger *slog.Logger) (*facts.Registry, error) {
	reg := facts.NewRegistry(facts.WithLogger(logger))
	if err := facts.RegisterPolicyFacts(reg, newLister(cfg.Source, logger)); err != nil {
		return nil, fmt.Errorf("register policy facts: %w", err)
	}
	return reg, nil
}

func runFacts(ctx context.Context, w io.Writer, reg *facts.Registry, cfg config.Config, names []string, logger *slog.Logger) error {
	values, resolveErr := reg.Resolve(ctx, names...)
	if errors.Is(resolveErr, facts.ErrUnknownFact) {
		return resolveErr
	}

	m := metrics.NewMetrics()
	recordFactMetrics(m, values)
	m.SetLastRun(time.Now())
	if err := m.WriteTextfile(cfg.Textfile); err != nil {
		return err
	}

	if err := renderFacts(w, cfg.Output, values); err != nil {
		return err
	}

	known := 0
	for _, v := range values {
		if v.Known {
			known++
		}
	}
	logger.Info("facts resolved",
		slog.Int("facts", len(values)),
		slog.Int("known", known),
		slog.String("source", cfg.Source),
	)

	if resolveErr == nil {
		return nil
	}
	if cfg.Strict || errors.Is(resolveErr, context.Canceled) || errors.Is(resolveErr, context.DeadlineExceeded) {
		return resolveErr
	}
	return nil
}

func recordFactMetrics(m *metrics.Metrics, values []facts.Value) {
	for _, v := range values {
		m.RecordFact(v.Name, v.Known)
		if v.Known && v.Labels["family"] != "" && v.Labels["chain"] != "" {
			m.RecordChainPolicy(v.Labels["family"], v.Labels["chain"], v.Policy)
		}
		if v.Err != nil {
			m.IncrementError(errorType(v.Err))
		}
	}
}

func errorType(err error) string {
	var parseErr *iptables.ParseError
	switch {
	case iptables.IsUnavailable(err):
		return "subprocess"
	case errors.As(err, &parseErr):
		return "parse"
	default:
		return "other"
	}
}
