package policy

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/sardanioss/pinguard/hostmatch"
)

// ValidatePinHash checks that hash looks like a canonical pin value: valid
// base64 decoding to exactly 32 bytes (SHA-256), i.e. 44 characters with
// padding. This is an optional ingest-time helper — the evaluator itself
// never validates pin shape; a malformed hash simply fails to match any
// candidate (spec's INVALID_PIN taxonomy entry).
func ValidatePinHash(h string) error {
	if len(h) != 44 {
		return fmt.Errorf("policy: invalid pin length: expected 44 characters, got %d", len(h))
	}
	decoded, err := base64.StdEncoding.DecodeString(h)
	if err != nil {
		return fmt.Errorf("policy: invalid pin encoding: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("policy: invalid pin hash length: expected 32 bytes, got %d", len(decoded))
	}
	return nil
}

// FromLegacyPinMap converts the common ad hoc "host -> SPKI pin hashes"
// shape (the form the teacher's own CertPinner.AddPin host-scoped pins and
// the wider pinning ecosystem's hostname->hash maps take) into a PolicySet
// of exact-host policies, one SPKI pin per hash, STRICT/no-fallback. It
// prints the same deprecation-notice style as the teacher's
// client.HeadersFromMap: this shape has no notion of wildcards, roles, or
// fail-open behaviour, so callers migrating off it should move to
// PolicySet/PinningPolicy literals directly.
func FromLegacyPinMap(hostPins map[string][]string) PolicySet {
	fmt.Fprintln(os.Stderr, "pinguard: DEPRECATION WARNING - host->hash map pinning is deprecated.")
	fmt.Fprintln(os.Stderr, "          Please construct a policy.PolicySet directly.")

	policies := make([]HostPolicy, 0, len(hostPins))
	for host, hashes := range hostPins {
		pins := make([]Pin, len(hashes))
		for i, h := range hashes {
			pins[i] = Pin{Type: SPKI, Hash: h, Role: Primary, Scope: ScopeAny}
		}
		policies = append(policies, HostPolicy{
			Pattern: hostmatch.NewExact(host),
			Policy: PinningPolicy{
				Pins:                     pins,
				FailStrategy:             Strict,
				RequireSystemTrust:       false,
				AllowSystemTrustFallback: false,
			},
		})
	}

	return PolicySet{Policies: policies}
}
