package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/denniswebb/fwfacts/internal/iptables"
)

// PolicyFactName returns the fact name for a chain policy, for example
// "ip6tables_forward_policy".
func PolicyFactName(family iptables.Family, chain iptables.Chain) string {
	return fmt.Sprintf("%s_%s_policy", family, strings.ToLower(string(chain)))
}

// PolicyFact builds the fact reporting the default policy of one chain.
func PolicyFact(lister iptables.Lister, family iptables.Family, chain iptables.Chain) Fact {
	return Fact{
		Name:    PolicyFactName(family, chain),
		Kernels: []string{"linux"},
		Labels: map[string]string{
			"family": string(family),
			"chain":  string(chain),
		},
		Resolve: func(ctx context.Context) (string, error) {
			return lister.Policy(ctx, family, chain)
		},
	}
}

// RegisterPolicyFacts registers a policy fact for every family and built-in chain.
func RegisterPolicyFacts(reg *Registry, lister iptables.Lister) error {
	for _, family := range iptables.Families {
		for _, chain := range iptables.Chains {
			if err := reg.Register(PolicyFact(lister, family, chain)); err != nil {
				return err
			}
		}
	}
	return nil
}
