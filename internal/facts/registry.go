package facts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/denniswebb/fwfacts/internal/iptables"
)

// ErrUnknownFact is returned when a requested fact is not registered.
var ErrUnknownFact = errors.New("unknown fact")

// Resolver produces the value of a fact.
type Resolver func(ctx context.Context) (string, error)

// Fact is a named piece of host state.
type Fact struct {
	Name string
	// Kernels restricts resolution to the listed kernels. Empty means anywhere.
	Kernels []string
	// Labels are copied onto every Value, for example family and chain.
	Labels  map[string]string
	Resolve Resolver
}

// Value is the outcome of resolving one fact.
type Value struct {
	Name   string
	Policy string
	Known  bool
	Labels map[string]string
	// Err is set when the fact could not be resolved.
	Err error
}

// Registry maps fact names to their definitions.
type Registry struct {
	facts  map[string]Fact
	kernel string
	logger *slog.Logger
}

// Option customises a Registry.
type Option func(*Registry)

// WithKernel overrides the kernel used for confinement checks.
func WithKernel(kernel string) Option {
	return func(r *Registry) {
		r.kernel = kernel
	}
}

// WithLogger sets the logger used while resolving.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry confined to the running kernel.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		facts:  map[string]Fact{},
		kernel: runtime.GOOS,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a fact. Names must be unique.
func (r *Registry) Register(fact Fact) error {
	if fact.Name == "" {
		return errors.New("fact name must not be empty")
	}
	if fact.Resolve == nil {
		return fmt.Errorf("fact %s has no resolver", fact.Name)
	}
	if _, exists := r.facts[fact.Name]; exists {
		return fmt.Errorf("fact %s already registered", fact.Name)
	}
	r.facts[fact.Name] = fact
	return nil
}

// Names returns the registered fact names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.facts))
	for name := range r.facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve evaluates the requested facts, or every registered fact when no names
// are given. Facts whose listing is unavailable come back unknown without an
// error. Any other failure also yields an unknown value, and the failures are
// returned together as an aggregate. Once ctx is done every remaining fact is
// reported unknown and the context error is returned.
func (r *Registry) Resolve(ctx context.Context, names ...string) ([]Value, error) {
	selected, err := r.selected(names)
	if err != nil {
		return nil, err
	}

	values := make([]Value, 0, len(selected))
	var errs []error
	var ctxErr error
	for _, name := range selected {
		fact := r.facts[name]
		if len(fact.Kernels) > 0 && !sets.New(fact.Kernels...).Has(r.kernel) {
			r.logger.Debug("fact confined", slog.String("fact", name), slog.String("kernel", r.kernel))
			continue
		}

		value := Value{Name: name, Labels: fact.Labels}
		if ctxErr == nil {
			ctxErr = ctx.Err()
		}
		if ctxErr != nil {
			value.Err = ctxErr
			values = append(values, value)
			continue
		}

		policy, err := fact.Resolve(ctx)
		switch {
		case err == nil:
			value.Policy = policy
			value.Known = true
		case ctx.Err() != nil:
			// A deadline that kills the listing command surfaces as a command
			// failure; report the context error instead.
			ctxErr = ctx.Err()
			value.Err = ctxErr
			r.logger.Warn("fact resolution interrupted", slog.String("fact", name), slog.Any("error", err))
		case iptables.IsUnavailable(err):
			value.Err = err
			r.logger.Debug("fact unavailable", slog.String("fact", name), slog.Any("error", err))
		default:
			value.Err = err
			errs = append(errs, fmt.Errorf("resolve %s: %w", name, err))
			r.logger.Warn("fact resolution failed", slog.String("fact", name), slog.Any("error", err))
		}
		values = append(values, value)
	}

	if ctxErr != nil {
		errs = append(errs, ctxErr)
	}
	return values, utilerrors.NewAggregate(errs)
}

func (r *Registry) selected(names []string) ([]string, error) {
	if len(names) == 0 {
		return r.Names(), nil
	}

	wanted := sets.New(names...)
	var missing []string
	for _, name := range sets.List(wanted) {
		if _, ok := r.facts[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFact, strings.Join(missing, ", "))
	}
	return sets.List(wanted), nil
}
