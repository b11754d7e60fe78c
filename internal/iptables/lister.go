package iptables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	goiptables "github.com/coreos/go-iptables/iptables"
)

// ErrNoOutput marks a listing command that succeeded but printed nothing.
var ErrNoOutput = errors.New("listing command produced no output")

// Lister retrieves the default policy of a chain for a protocol family.
type Lister interface {
	Policy(ctx context.Context, family Family, chain Chain) (string, error)
}

// IsUnavailable reports whether err means the listing could not be obtained at
// all, as opposed to output that could not be parsed.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) || errors.Is(err, ErrNoOutput) || errors.Is(err, exec.ErrNotFound)
}

// ExecLister runs `<binary> -L <chain>` and parses the chain header.
type ExecLister struct {
	executor Executor
	logger   *slog.Logger
}

// NewExecLister builds a lister backed by the given executor.
func NewExecLister(executor Executor, logger *slog.Logger) *ExecLister {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecLister{executor: executor, logger: logger}
}

// Policy lists the chain and extracts its default policy.
func (l *ExecLister) Policy(ctx context.Context, family Family, chain Chain) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := []string{"-w", iptablesWaitSeconds, "-n", "-L", string(chain)}
	l.logger.Debug("listing chain",
		slog.String("binary", family.Binary()),
		slog.String("chain", string(chain)),
	)

	output, err := l.executor.Output(ctx, family.Binary(), args...)
	if err != nil {
		return "", fmt.Errorf("list %s chain %s: %w", family, chain, err)
	}
	if strings.TrimSpace(output) == "" {
		return "", fmt.Errorf("list %s chain %s: %w", family, chain, ErrNoOutput)
	}

	policy, err := ExtractPolicy(output)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Source = family.Binary() + " -L " + string(chain)
		}
		return "", err
	}
	return policy, nil
}

// ruleLister is the subset of go-iptables used to read rule specs.
type ruleLister interface {
	List(table, chain string) ([]string, error)
}

// RuleSpecLister reads `-S` rule specs through go-iptables and picks the
// "-P <chain> <policy>" line.
type RuleSpecLister struct {
	open   func(Family) (ruleLister, error)
	logger *slog.Logger
}

// NewRuleSpecLister builds a lister backed by github.com/coreos/go-iptables.
func NewRuleSpecLister(logger *slog.Logger) *RuleSpecLister {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleSpecLister{open: openGoIPTables, logger: logger}
}

func openGoIPTables(family Family) (ruleLister, error) {
	proto := goiptables.ProtocolIPv4
	if family.IPv6() {
		proto = goiptables.ProtocolIPv6
	}
	return goiptables.NewWithProtocol(proto)
}

// Policy lists the chain rule specs and extracts its default policy.
func (l *RuleSpecLister) Policy(ctx context.Context, family Family, chain Chain) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := []string{"-t", filterTable, "-S", string(chain)}
	ipt, err := l.open(family)
	if err != nil {
		return "", fmt.Errorf("list %s chain %s: %w", family, chain, &CommandError{
			Command: family.Binary(),
			Args:    args,
			Err:     err,
		})
	}

	l.logger.Debug("listing chain rule specs",
		slog.String("binary", family.Binary()),
		slog.String("chain", string(chain)),
	)

	lines, err := ipt.List(filterTable, string(chain))
	if err != nil {
		return "", fmt.Errorf("list %s chain %s: %w", family, chain, &CommandError{
			Command: family.Binary(),
			Args:    args,
			Err:     err,
		})
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("list %s chain %s: %w", family, chain, ErrNoOutput)
	}

	policy, err := ExtractRuleSpecPolicy(lines, chain)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Source = family.Binary() + " -S " + string(chain)
		}
		return "", err
	}
	return policy, nil
}
