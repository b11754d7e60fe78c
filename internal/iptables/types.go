package iptables

const (
	ipv4Binary = "iptables"
	ipv6Binary = "ip6tables"

	iptablesWaitSeconds = "5"
	filterTable         = "filter"
)

// Family selects the protocol family, named after the binary that manages it.
type Family string

const (
	FamilyIPv4 Family = ipv4Binary
	FamilyIPv6 Family = ipv6Binary
)

// Families lists every supported family in registration order.
var Families = []Family{FamilyIPv4, FamilyIPv6}

// Binary returns the command used to query the family.
func (f Family) Binary() string {
	return string(f)
}

// IPv6 reports whether the family is ip6tables.
func (f Family) IPv6() bool {
	return f == FamilyIPv6
}

// Chain is one of the built-in filter chains carrying a default policy.
type Chain string

const (
	ChainInput   Chain = "INPUT"
	ChainOutput  Chain = "OUTPUT"
	ChainForward Chain = "FORWARD"
)

// Chains lists the built-in filter chains in registration order.
var Chains = []Chain{ChainInput, ChainOutput, ChainForward}
