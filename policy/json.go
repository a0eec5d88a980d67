package policy

import (
	"encoding/json"
	"fmt"

	"github.com/sardanioss/pinguard/hostmatch"
)

// The wire shapes below mirror the teacher's session.SessionState
// convention of a plain struct with `json` tags; PolicySet is the payload
// most RemoteConfigBlob.payload values decode into once signature
// verification (package remoteconfig) has passed.

type pinWire struct {
	Type  string `json:"type"`
	Hash  string `json:"hash"`
	Role  string `json:"role"`
	Scope string `json:"scope"`
}

type policyWire struct {
	Pins                     []pinWire `json:"pins"`
	FailStrategy             string    `json:"fail_strategy"`
	RequireSystemTrust       bool      `json:"require_system_trust"`
	AllowSystemTrustFallback bool      `json:"allow_system_trust_fallback"`
}

type hostPolicyWire struct {
	Pattern string     `json:"pattern"`
	Policy  policyWire `json:"policy"`
}

type policySetWire struct {
	Policies      []hostPolicyWire `json:"policies"`
	DefaultPolicy *policyWire      `json:"default_policy,omitempty"`
}

// MarshalJSON encodes the PolicySet in pinguard's canonical wire format.
func (ps PolicySet) MarshalJSON() ([]byte, error) {
	wire := policySetWire{
		Policies: make([]hostPolicyWire, len(ps.Policies)),
	}
	for i, hp := range ps.Policies {
		wire.Policies[i] = hostPolicyWire{
			Pattern: hp.Pattern.RawValue(),
			Policy:  toPolicyWire(hp.Policy),
		}
	}
	if ps.DefaultPolicy != nil {
		w := toPolicyWire(*ps.DefaultPolicy)
		wire.DefaultPolicy = &w
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes a PolicySet from pinguard's canonical wire format.
func (ps *PolicySet) UnmarshalJSON(data []byte) error {
	var wire policySetWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return &DecodeError{Op: "policy set", Kind: ErrMalformedJSON, Cause: err}
	}

	policies := make([]HostPolicy, len(wire.Policies))
	for i, w := range wire.Policies {
		p, err := fromPolicyWire(w.Policy)
		if err != nil {
			return fmt.Errorf("policy: decode host policy %d: %w", i, err)
		}
		policies[i] = HostPolicy{
			Pattern: hostmatch.Parse(w.Pattern),
			Policy:  p,
		}
	}

	var def *PinningPolicy
	if wire.DefaultPolicy != nil {
		p, err := fromPolicyWire(*wire.DefaultPolicy)
		if err != nil {
			return fmt.Errorf("policy: decode default policy: %w", err)
		}
		def = &p
	}

	ps.Policies = policies
	ps.DefaultPolicy = def
	return nil
}

func toPolicyWire(p PinningPolicy) policyWire {
	pins := make([]pinWire, len(p.Pins))
	for i, pin := range p.Pins {
		pins[i] = pinWire{
			Type:  pin.Type.String(),
			Hash:  pin.Hash,
			Role:  pin.Role.String(),
			Scope: pin.Scope.String(),
		}
	}
	strategy := "STRICT"
	if p.FailStrategy == Permissive {
		strategy = "PERMISSIVE"
	}
	return policyWire{
		Pins:                     pins,
		FailStrategy:             strategy,
		RequireSystemTrust:       p.RequireSystemTrust,
		AllowSystemTrustFallback: p.AllowSystemTrustFallback,
	}
}

func fromPolicyWire(w policyWire) (PinningPolicy, error) {
	pins := make([]Pin, len(w.Pins))
	for i, pw := range w.Pins {
		pinType, err := parsePinType(pw.Type)
		if err != nil {
			return PinningPolicy{}, fmt.Errorf("pin %d: %w", i, err)
		}
		role, err := parseRole(pw.Role)
		if err != nil {
			return PinningPolicy{}, fmt.Errorf("pin %d: %w", i, err)
		}
		scope, err := parseScope(pw.Scope)
		if err != nil {
			return PinningPolicy{}, fmt.Errorf("pin %d: %w", i, err)
		}
		pins[i] = Pin{Type: pinType, Hash: pw.Hash, Role: role, Scope: scope}
	}

	strategy, err := parseFailStrategy(w.FailStrategy)
	if err != nil {
		return PinningPolicy{}, err
	}

	return PinningPolicy{
		Pins:                     pins,
		FailStrategy:             strategy,
		RequireSystemTrust:       w.RequireSystemTrust,
		AllowSystemTrustFallback: w.AllowSystemTrustFallback,
	}, nil
}

func parsePinType(s string) (PinType, error) {
	switch s {
	case "SPKI":
		return SPKI, nil
	case "CERTIFICATE":
		return Certificate, nil
	case "CA":
		return CA, nil
	default:
		return 0, &DecodeError{Op: fmt.Sprintf("pin type %q", s), Kind: ErrUnknownEnumValue}
	}
}

func parseRole(s string) (Role, error) {
	switch s {
	case "PRIMARY", "":
		return Primary, nil
	case "BACKUP":
		return Backup, nil
	default:
		return 0, &DecodeError{Op: fmt.Sprintf("pin role %q", s), Kind: ErrUnknownEnumValue}
	}
}

func parseScope(s string) (Scope, error) {
	switch s {
	case "LEAF":
		return ScopeLeaf, nil
	case "INTERMEDIATE":
		return ScopeIntermediate, nil
	case "ROOT":
		return ScopeRoot, nil
	case "ANY", "":
		return ScopeAny, nil
	default:
		return 0, &DecodeError{Op: fmt.Sprintf("pin scope %q", s), Kind: ErrUnknownEnumValue}
	}
}

func parseFailStrategy(s string) (FailStrategy, error) {
	switch s {
	case "STRICT", "":
		return Strict, nil
	case "PERMISSIVE":
		return Permissive, nil
	default:
		return 0, &DecodeError{Op: fmt.Sprintf("fail strategy %q", s), Kind: ErrUnknownEnumValue}
	}
}
