package policy

import "github.com/sardanioss/pinguard/hostmatch"

// Resolve returns the single PinningPolicy that applies to host, or nil if
// none does:
//
//  1. An empty normalised host resolves to nil.
//  2. The first HostPolicy with an Exact pattern that matches wins,
//     regardless of where it sits relative to matching wildcards.
//  3. Otherwise, among every matching Wildcard policy, the one with the
//     longest suffix wins; ties go to whichever appears first in
//     ps.Policies.
//  4. Otherwise ps.DefaultPolicy is returned (nil if unset).
func (ps PolicySet) Resolve(host string) *PinningPolicy {
	if hostmatch.Normalize(host) == "" {
		return nil
	}

	for _, hp := range ps.Policies {
		if hp.Pattern.Kind() == hostmatch.Exact && hostmatch.Match(hp.Pattern, host) {
			policy := hp.Policy
			return &policy
		}
	}

	bestSpecificity := -1
	var best *PinningPolicy
	for _, hp := range ps.Policies {
		if hp.Pattern.Kind() != hostmatch.Wildcard || !hostmatch.Match(hp.Pattern, host) {
			continue
		}
		if hp.Pattern.Specificity() > bestSpecificity {
			bestSpecificity = hp.Pattern.Specificity()
			policy := hp.Policy
			best = &policy
		}
	}
	if best != nil {
		return best
	}

	return ps.DefaultPolicy
}
