// Package trust implements the deterministic trust-decision state machine:
// given a certificate chain, a system-trust outcome, a host, and the
// already-resolved pinning policy, it produces a TrustDecision plus an
// ordered event log. The evaluator never raises — every adverse condition
// folds into one of the eight Reasons (spec §7); it performs no I/O and
// holds no state across calls.
package trust

import (
	"github.com/sardanioss/pinguard/chain"
	"github.com/sardanioss/pinguard/policy"
)

// EventKind tags a PinGuardEvent. The evaluator (evaluator.go) and the
// registry's mTLS step build Event values directly with the Kind they
// emit; String maps every kind to its wire name.
type EventKind int

const (
	PolicyMissing EventKind = iota
	SystemTrustEvaluated
	SystemTrustFailed
	SystemTrustFailedPermissive
	ChainSummaryEvent
	PinMatched
	PinMismatch
	PinMismatchAllowedByFallback
	PinMismatchPermissive
	PinSetEmpty
	MTLSIdentityUsed
	MTLSIdentityMissing
)

func (k EventKind) String() string {
	switch k {
	case PolicyMissing:
		return "POLICY_MISSING"
	case SystemTrustEvaluated:
		return "SYSTEM_TRUST_EVALUATED"
	case SystemTrustFailed:
		return "SYSTEM_TRUST_FAILED"
	case SystemTrustFailedPermissive:
		return "SYSTEM_TRUST_FAILED_PERMISSIVE"
	case ChainSummaryEvent:
		return "CHAIN_SUMMARY"
	case PinMatched:
		return "PIN_MATCHED"
	case PinMismatch:
		return "PIN_MISMATCH"
	case PinMismatchAllowedByFallback:
		return "PIN_MISMATCH_ALLOWED_BY_FALLBACK"
	case PinMismatchPermissive:
		return "PIN_MISMATCH_PERMISSIVE"
	case PinSetEmpty:
		return "PIN_SET_EMPTY"
	case MTLSIdentityUsed:
		return "MTLS_IDENTITY_USED"
	case MTLSIdentityMissing:
		return "MTLS_IDENTITY_MISSING"
	default:
		return "UNKNOWN"
	}
}

// Event is one entry in a TrustDecision's ordered event log. Only the
// fields relevant to Kind are populated; the rest are left at their zero
// value.
type Event struct {
	Kind        EventKind
	Host        string
	IsTrusted   bool
	ErrorText   string
	Summary     chain.Summary
	MatchedPins []policy.Pin
}

// Sink receives every event in emission order, synchronously on the
// calling goroutine, as the evaluation produces it. Sinks must be
// re-entrancy-safe and responsible for their own synchronization if called
// concurrently from multiple goroutines — the evaluator never serializes
// sink calls across concurrent Evaluate invocations.
type Sink func(Event)
