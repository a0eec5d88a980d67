package trust

import (
	"github.com/sardanioss/pinguard/chain"
	"github.com/sardanioss/pinguard/chainsrc"
	"github.com/sardanioss/pinguard/hostmatch"
	"github.com/sardanioss/pinguard/policy"
)

// Evaluate runs the trust-decision state machine for one challenge: a host,
// a raw certificate chain, a system-trust outcome already produced by a
// chainsrc.SystemTrust (systemTrusted/systemTrustErrText), and the policy
// already resolved for host by a policy.PolicySet (resolved is nil when the
// resolver found nothing). Resolution itself is the registry's job, not
// this package's — Evaluate only ever consumes the outcome.
//
// Every event reaching sink also lands in the returned Decision.Events, in
// the same order; sink may be nil.
//
//  1. resolved == nil: emit POLICY_MISSING, decide {false, POLICY_MISSING}.
//  2. Emit SYSTEM_TRUST_EVALUATED(host, systemTrusted).
//  3. If resolved.RequireSystemTrust and !systemTrusted: permissive
//     policies emit SYSTEM_TRUST_FAILED_PERMISSIVE and decide
//     {true, SYSTEM_TRUST_FAILED_PERMISSIVE}; strict policies emit
//     SYSTEM_TRUST_FAILED and decide {false, TRUST_FAILED}.
//  4. Derive candidates and emit CHAIN_SUMMARY.
//  5. An empty pin set emits PIN_SET_EMPTY and falls through to step 6
//     rather than being a terminal state. Otherwise every pin whose scope
//     admits a matching candidate is collected; if any matched, emit
//     PIN_MATCHED and decide {true, PIN_MATCH}.
//  6. No pin matched: allowSystemTrustFallback+trusted wins first, then a
//     permissive strategy+trusted, otherwise emit PIN_MISMATCH and decide
//     {false, PINNING_FAILED}.
func Evaluate(
	host string,
	certs []chainsrc.Certificate,
	systemTrusted bool,
	systemTrustErrText string,
	resolved *policy.PinningPolicy,
	sink Sink,
) Decision {
	h := hostmatch.Normalize(host)

	var events []Event
	emit := func(e Event) {
		e.Host = h
		events = append(events, e)
		if sink != nil {
			sink(e)
		}
	}

	if resolved == nil {
		emit(Event{Kind: PolicyMissing})
		return Decision{IsTrusted: false, Reason: ReasonPolicyMissing, Events: events}
	}

	emit(Event{Kind: SystemTrustEvaluated, IsTrusted: systemTrusted})

	if resolved.RequireSystemTrust && !systemTrusted {
		if resolved.FailStrategy == policy.Permissive {
			emit(Event{Kind: SystemTrustFailedPermissive})
			return Decision{IsTrusted: true, Reason: ReasonSystemTrustFailedPermissive, Events: events}
		}
		emit(Event{Kind: SystemTrustFailed, ErrorText: systemTrustErrText})
		return Decision{IsTrusted: false, Reason: ReasonTrustFailed, Events: events}
	}

	candidates := chain.Build(certs)
	summary := chain.Summarize(certs)
	emit(Event{Kind: ChainSummaryEvent, Summary: summary})

	var matched []policy.Pin
	if len(resolved.Pins) == 0 {
		emit(Event{Kind: PinSetEmpty})
	} else {
		for _, pin := range resolved.Pins {
			if pinMatchesAny(pin, candidates) {
				matched = append(matched, pin)
			}
		}
		if len(matched) > 0 {
			emit(Event{Kind: PinMatched, MatchedPins: matched})
			return Decision{IsTrusted: true, Reason: ReasonPinMatch, Events: events}
		}
	}

	switch {
	case resolved.AllowSystemTrustFallback && systemTrusted:
		emit(Event{Kind: PinMismatchAllowedByFallback})
		return Decision{IsTrusted: true, Reason: ReasonPinMismatchAllowedByFallback, Events: events}
	case resolved.FailStrategy == policy.Permissive && systemTrusted:
		emit(Event{Kind: PinMismatchPermissive})
		return Decision{IsTrusted: true, Reason: ReasonPinMismatchPermissive, Events: events}
	default:
		emit(Event{Kind: PinMismatch})
		return Decision{IsTrusted: false, Reason: ReasonPinningFailed, Events: events}
	}
}

// pinMatchesAny reports whether pin matches any candidate whose scope
// admits it, per pin.Type's comparison rule: SPKI and CERTIFICATE compare
// the relevant hash directly, CA additionally requires the candidate to
// occupy an intermediate or root position.
func pinMatchesAny(pin policy.Pin, candidates []chain.Candidate) bool {
	for _, c := range candidates {
		if !c.Scope.Contains(pin.Scope) {
			continue
		}
		switch pin.Type {
		case policy.SPKI:
			if c.SPKIHash != "" && c.SPKIHash == pin.Hash {
				return true
			}
		case policy.Certificate:
			if c.CertificateHash != "" && c.CertificateHash == pin.Hash {
				return true
			}
		case policy.CA:
			if c.IsCA() && c.CertificateHash != "" && c.CertificateHash == pin.Hash {
				return true
			}
		}
	}
	return false
}
