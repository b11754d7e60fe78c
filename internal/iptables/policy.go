package iptables

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPolicyNotFound is wrapped by ParseError when a listing has no policy line.
var ErrPolicyNotFound = errors.New("policy line not found in listing")

// Header lines look like "Chain INPUT (policy ACCEPT)". Case varies by platform.
var policyHeader = regexp.MustCompile(`(?im)^chain.+policy\s+(\w+)`)

// ParseError reports listing output that did not contain a recognizable policy.
type ParseError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse policy: %v", e.Err)
	}
	return fmt.Sprintf("parse policy from %s: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As checks.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractPolicy returns the default policy from the first chain header found in
// an `iptables -L` listing. The policy is returned as written in the listing.
func ExtractPolicy(listing string) (string, error) {
	match := policyHeader.FindStringSubmatch(listing)
	if match == nil {
		return "", &ParseError{Err: ErrPolicyNotFound}
	}
	return match[1], nil
}

// ExtractRuleSpecPolicy returns the policy from `iptables -S` style output,
// where built-in chains begin with "-P <CHAIN> <POLICY>".
func ExtractRuleSpecPolicy(lines []string, chain Chain) (string, error) {
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] != "-P" {
			continue
		}
		if !strings.EqualFold(fields[1], string(chain)) {
			continue
		}
		return fields[2], nil
	}
	return "", &ParseError{Err: ErrPolicyNotFound}
}
