package facts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/denniswebb/fwfacts/internal/iptables"
)

type policyKey struct {
	family iptables.Family
	chain  iptables.Chain
}

type stubLister struct {
	policies map[policyKey]string
	errs     map[policyKey]error
	calls    []policyKey
}

func (s *stubLister) Policy(_ context.Context, family iptables.Family, chain iptables.Chain) (string, error) {
	key := policyKey{family: family, chain: chain}
	s.calls = append(s.calls, key)
	if err, ok := s.errs[key]; ok {
		return "", err
	}
	return s.policies[key], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPolicyRegistry(t *testing.T, lister iptables.Lister, kernel string) *Registry {
	t.Helper()
	reg := NewRegistry(WithKernel(kernel), WithLogger(discardLogger()))
	if err := RegisterPolicyFacts(reg, lister); err != nil {
		t.Fatalf("RegisterPolicyFacts returned error: %v", err)
	}
	return reg
}

func TestRegisterPolicyFactsNames(t *testing.T) {
	t.Parallel()

	reg := newPolicyRegistry(t, &stubLister{}, "linux")

	want := []string{
		"ip6tables_forward_policy",
		"ip6tables_input_policy",
		"ip6tables_output_policy",
		"iptables_forward_policy",
		"iptables_input_policy",
		"iptables_output_policy",
	}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("unexpected fact names (-want +got):\n%s", diff)
	}

	if err := RegisterPolicyFacts(reg, &stubLister{}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	unavailable := &iptables.CommandError{Command: "ip6tables", Err: errors.New("exit status 3")}

	lister := &stubLister{
		policies: map[policyKey]string{
			{iptables.FamilyIPv4, iptables.ChainInput}:   "DROP",
			{iptables.FamilyIPv4, iptables.ChainOutput}:  "ACCEPT",
			{iptables.FamilyIPv4, iptables.ChainForward}: "DROP",
		},
		errs: map[policyKey]error{
			{iptables.FamilyIPv6, iptables.ChainInput}:   unavailable,
			{iptables.FamilyIPv6, iptables.ChainOutput}:  iptables.ErrNoOutput,
			{iptables.FamilyIPv6, iptables.ChainForward}: &iptables.ParseError{Err: iptables.ErrPolicyNotFound},
		},
	}
	reg := newPolicyRegistry(t, lister, "linux")

	values, err := reg.Resolve(ctx)
	if err == nil {
		t.Fatal("expected aggregated parse error")
	}
	if !errors.Is(err, iptables.ErrPolicyNotFound) {
		t.Fatalf("expected ErrPolicyNotFound in aggregate, got %v", err)
	}
	if !strings.Contains(err.Error(), "ip6tables_forward_policy") {
		t.Fatalf("expected error to name the fact, got %v", err)
	}

	want := []Value{
		{Name: "ip6tables_forward_policy", Labels: map[string]string{"family": "ip6tables", "chain": "FORWARD"}},
		{Name: "ip6tables_input_policy", Labels: map[string]string{"family": "ip6tables", "chain": "INPUT"}},
		{Name: "ip6tables_output_policy", Labels: map[string]string{"family": "ip6tables", "chain": "OUTPUT"}},
		{Name: "iptables_forward_policy", Policy: "DROP", Known: true, Labels: map[string]string{"family": "iptables", "chain": "FORWARD"}},
		{Name: "iptables_input_policy", Policy: "DROP", Known: true, Labels: map[string]string{"family": "iptables", "chain": "INPUT"}},
		{Name: "iptables_output_policy", Policy: "ACCEPT", Known: true, Labels: map[string]string{"family": "iptables", "chain": "OUTPUT"}},
	}
	if diff := cmp.Diff(want, values, cmpopts.IgnoreFields(Value{}, "Err")); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}

	for _, v := range values[:3] {
		if v.Err == nil {
			t.Fatalf("expected %s to carry its error", v.Name)
		}
	}
}

func TestRegistryResolveSelected(t *testing.T) {
	t.Parallel()

	lister := &stubLister{policies: map[policyKey]string{
		{iptables.FamilyIPv4, iptables.ChainInput}: "ACCEPT",
	}}
	reg := newPolicyRegistry(t, lister, "linux")

	values, err := reg.Resolve(context.Background(), "iptables_input_policy", "iptables_input_policy")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(values) != 1 {
		t.Fatalf("expected 1 value, got %d", len(values))
	}
	if values[0].Policy != "ACCEPT" || !values[0].Known {
		t.Fatalf("unexpected value %+v", values[0])
	}
	if len(lister.calls) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(lister.calls))
	}

	if _, err := reg.Resolve(context.Background(), "iptables_nat_policy"); !errors.Is(err, ErrUnknownFact) {
		t.Fatalf("expected ErrUnknownFact, got %v", err)
	}
}

func TestRegistryConfinement(t *testing.T) {
	t.Parallel()

	lister := &stubLister{}
	reg := newPolicyRegistry(t, lister, "darwin")

	values, err := reg.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("expected confined facts to be skipped, got %d values", len(values))
	}
	if len(lister.calls) != 0 {
		t.Fatalf("expected no listings on a non-linux kernel, got %d", len(lister.calls))
	}

	unconfined := Fact{
		Name:    "custom",
		Resolve: func(context.Context) (string, error) { return "value", nil },
	}
	if err := reg.Register(unconfined); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	values, err = reg.Resolve(context.Background(), "custom")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if len(values) != 1 || values[0].Policy != "value" {
		t.Fatalf("expected unconfined fact to resolve, got %+v", values)
	}
}

func TestRegistryRegisterValidation(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(WithLogger(discardLogger()))
	if err := reg.Register(Fact{Resolve: func(context.Context) (string, error) { return "", nil }}); err == nil {
		t.Fatal("expected error for empty name")
	}
	if err := reg.Register(Fact{Name: "no_resolver"}); err == nil {
		t.Fatal("expected error for missing resolver")
	}
}

func TestRegistryResolveCancelled(t *testing.T) {
	t.Parallel()

	lister := &stubLister{}
	reg := newPolicyRegistry(t, lister, "linux")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Resolve(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(lister.calls) != 0 {
		t.Fatalf("expected no listings after cancellation, got %d", len(lister.calls))
	}
}

func TestPolicyFactName(t *testing.T) {
	t.Parallel()

	if got := PolicyFactName(iptables.FamilyIPv6, iptables.ChainForward); got != "ip6tables_forward_policy" {
		t.Fatalf("unexpected fact name %q", got)
	}
}

func TestRegistryResolveInterrupted(t *testing.T) {
	t.Parallel()

	killed := &iptables.CommandError{Command: "iptables", Err: errors.New("signal: killed")}

	tests := []struct {
		name      string
		interrupt string
		wantKnown map[string]bool
	}{
		{
			name:      "last fact",
			interrupt: "c_policy",
			wantKnown: map[string]bool{"a_policy": true, "b_policy": true, "c_policy": false},
		},
		{
			name:      "middle fact",
			interrupt: "b_policy",
			wantKnown: map[string]bool{"a_policy": true, "b_policy": false, "c_policy": false},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			reg := NewRegistry(WithLogger(discardLogger()))
			calls := 0
			for _, name := range []string{"a_policy", "b_policy", "c_policy"} {
				name := name
				err := reg.Register(Fact{
					Name: name,
					Resolve: func(context.Context) (string, error) {
						calls++
						if name == tc.interrupt {
							cancel()
							return "", killed
						}
						return "ACCEPT", nil
					},
				})
				if err != nil {
					t.Fatalf("Register returned error: %v", err)
				}
			}

			values, err := reg.Resolve(ctx)
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
			if len(values) != 3 {
				t.Fatalf("expected a value for every fact, got %d", len(values))
			}
			for _, v := range values {
				if v.Known != tc.wantKnown[v.Name] {
					t.Fatalf("fact %s known = %t, want %t", v.Name, v.Known, tc.wantKnown[v.Name])
				}
				if !v.Known && !errors.Is(v.Err, context.Canceled) {
					t.Fatalf("expected %s to carry context.Canceled, got %v", v.Name, v.Err)
				}
			}

			wantCalls := 3
			if tc.interrupt == "b_policy" {
				wantCalls = 2
			}
			if calls != wantCalls {
				t.Fatalf("expected %d resolver calls, got %d", wantCalls, calls)
			}
		})
	}
}
