package policy

import (
	"errors"
	"testing"

	"github.com/sardanioss/pinguard/hostmatch"
)

func TestResolve_ExactWinsOverWildcard(t *testing.T) {
	wildcard := PinningPolicy{FailStrategy: Strict}
	exact := PinningPolicy{FailStrategy: Permissive}

	ps := PolicySet{
		Policies: []HostPolicy{
			{Pattern: hostmatch.NewWildcard("example.com"), Policy: wildcard},
			{Pattern: hostmatch.NewExact("api.example.com"), Policy: exact},
		},
	}

	got := ps.Resolve("api.example.com")
	if got == nil {
		t.Fatal("Resolve returned nil, want the exact policy")
	}
	if got.FailStrategy != Permissive {
		t.Error("Resolve must prefer the exact match over the wildcard regardless of declaration order")
	}
}

func TestResolve_ExactWinsRegardlessOfOrder(t *testing.T) {
	wildcard := PinningPolicy{FailStrategy: Strict}
	exact := PinningPolicy{FailStrategy: Permissive}

	ps := PolicySet{
		Policies: []HostPolicy{
			{Pattern: hostmatch.NewExact("api.example.com"), Policy: exact},
			{Pattern: hostmatch.NewWildcard("example.com"), Policy: wildcard},
		},
	}

	got := ps.Resolve("api.example.com")
	if got.FailStrategy != Permissive {
		t.Error("exact match must win even when declared before the wildcard")
	}
}

func TestResolve_MostSpecificWildcardWins(t *testing.T) {
	broad := PinningPolicy{FailStrategy: Strict}
	narrow := PinningPolicy{FailStrategy: Permissive}

	ps := PolicySet{
		Policies: []HostPolicy{
			{Pattern: hostmatch.NewWildcard("example.com"), Policy: broad},
			{Pattern: hostmatch.NewWildcard("api.example.com"), Policy: narrow},
		},
	}

	got := ps.Resolve("v1.api.example.com")
	if got == nil {
		t.Fatal("Resolve returned nil")
	}
	if got.FailStrategy != Permissive {
		t.Error("the wildcard with the longer suffix must win")
	}
}

func TestResolve_NoMatchNoDefaultReturnsNil(t *testing.T) {
	ps := PolicySet{}
	if got := ps.Resolve("example.com"); got != nil {
		t.Errorf("Resolve() = %+v, want nil", got)
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	def := PinningPolicy{FailStrategy: Permissive}
	ps := PolicySet{DefaultPolicy: &def}

	got := ps.Resolve("anything.example.org")
	if got == nil || got.FailStrategy != Permissive {
		t.Error("Resolve must fall back to the default policy when nothing matches")
	}
}

func TestResolve_EmptyHostReturnsNil(t *testing.T) {
	def := PinningPolicy{}
	ps := PolicySet{DefaultPolicy: &def}
	if got := ps.Resolve(""); got != nil {
		t.Error("an empty host must resolve to nil even with a default policy set")
	}
}

func TestValidatePinHash(t *testing.T) {
	tests := []struct {
		name    string
		hash    string
		wantErr bool
	}{
		{"valid", "Y7EKzelfzqmyMnNRDIX8cecAf6wj1nk7nT25ws/qnVo=", false},
		{"too short", "abc", true},
		{"not base64", "########################################ZZZ=", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePinHash(tt.hash)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePinHash(%q) error = %v, wantErr %v", tt.hash, err, tt.wantErr)
			}
		})
	}
}

func TestFromLegacyPinMap(t *testing.T) {
	ps := FromLegacyPinMap(map[string][]string{
		"example.com": {"Y7EKzelfzqmyMnNRDIX8cecAf6wj1nk7nT25ws/qnVo="},
	})

	got := ps.Resolve("example.com")
	if got == nil {
		t.Fatal("Resolve returned nil for a host present in the legacy map")
	}
	if len(got.Pins) != 1 || got.Pins[0].Type != SPKI {
		t.Errorf("expected a single SPKI pin, got %+v", got.Pins)
	}
}

func TestPolicySetUnmarshalJSON_UnknownPinTypeIsDecodeError(t *testing.T) {
	var ps PolicySet
	data := []byte(`{"policies":[{"pattern":"example.com","policy":{"pins":[{"type":"BOGUS","hash":"x","role":"PRIMARY","scope":"ANY"}],"fail_strategy":"STRICT"}}]}`)

	err := ps.UnmarshalJSON(data)
	if err == nil {
		t.Fatal("expected an error for an unknown pin type")
	}
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Errorf("error chain does not contain a *DecodeError: %v", err)
	}
}

func TestPolicySetJSONRoundTrip(t *testing.T) {
	original := PolicySet{
		Policies: []HostPolicy{
			{
				Pattern: hostmatch.NewWildcard("example.com"),
				Policy: PinningPolicy{
					Pins: []Pin{
						{Type: SPKI, Hash: "Y7EKzelfzqmyMnNRDIX8cecAf6wj1nk7nT25ws/qnVo=", Role: Primary, Scope: ScopeLeaf},
					},
					FailStrategy:             Permissive,
					RequireSystemTrust:       true,
					AllowSystemTrustFallback: true,
				},
			},
		},
	}

	data, err := original.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded PolicySet
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}

	if len(decoded.Policies) != 1 {
		t.Fatalf("len(decoded.Policies) = %d, want 1", len(decoded.Policies))
	}
	got := decoded.Policies[0]
	if got.Pattern.RawValue() != "*.example.com" {
		t.Errorf("Pattern.RawValue() = %q, want %q", got.Pattern.RawValue(), "*.example.com")
	}
	if got.Policy.FailStrategy != Permissive {
		t.Error("FailStrategy did not round-trip")
	}
	if len(got.Policy.Pins) != 1 || got.Policy.Pins[0].Scope != ScopeLeaf {
		t.Errorf("pins did not round-trip: %+v", got.Policy.Pins)
	}
}
