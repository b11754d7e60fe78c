// Package iptables reads the default policy of the built-in filter chains. It
// lists a chain either by running `iptables -L` / `ip6tables -L` through an
// Executor and matching the "Chain <NAME> (policy <POLICY>)" header, or by
// reading `-S` rule specs through go-iptables. It never modifies firewall
// state.
package iptables
