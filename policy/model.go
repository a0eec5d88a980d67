// Package policy holds the pinning policy data model (pins, policies, host
// patterns, policy sets), its JSON serialization, and the resolver that
// picks which policy applies to a host. All types are immutable value data;
// any change is a whole-tree replacement (see package pinguard's registry).
package policy

import (
	"github.com/sardanioss/pinguard/chain"
	"github.com/sardanioss/pinguard/hostmatch"
)

// PinType is what a Pin's hash covers.
type PinType int

const (
	SPKI PinType = iota
	Certificate
	CA
)

func (t PinType) String() string {
	switch t {
	case SPKI:
		return "SPKI"
	case Certificate:
		return "CERTIFICATE"
	case CA:
		return "CA"
	default:
		return "UNKNOWN"
	}
}

// Role is advisory and never affects matching.
type Role int

const (
	Primary Role = iota
	Backup
)

func (r Role) String() string {
	if r == Backup {
		return "BACKUP"
	}
	return "PRIMARY"
}

// Scope aliases chain.Scope so policies and candidates speak the same
// vocabulary (LEAF/INTERMEDIATE/ROOT/ANY) without a second enum.
type Scope = chain.Scope

const (
	ScopeLeaf         = chain.Leaf
	ScopeIntermediate = chain.Intermediate
	ScopeRoot         = chain.Root
	ScopeAny          = chain.Any
)

// Pin is an immutable trust anchor: a hash of a given Type, eligible to
// match chain candidates within Scope. Hash is the canonical
// base64-encoded SHA-256 digest (44 characters with padding).
type Pin struct {
	Type  PinType
	Hash  string
	Role  Role
	Scope Scope
}

// FailStrategy controls fail-open vs fail-closed behaviour when system
// trust or pin checks fail.
type FailStrategy int

const (
	Strict FailStrategy = iota
	Permissive
)

// PinningPolicy is the set of pins and failure behaviour that applies to
// one or more hosts. Two pins in Pins may share (Type, Hash) only if their
// Scope differs; an empty Pins slice is legal and triggers a distinct
// PIN_SET_EMPTY event at evaluation time rather than being rejected here.
type PinningPolicy struct {
	Pins                    []Pin
	FailStrategy            FailStrategy
	RequireSystemTrust      bool
	AllowSystemTrustFallback bool
}

// HostPolicy binds a host pattern to the policy that applies when it
// matches.
type HostPolicy struct {
	Pattern hostmatch.Pattern
	Policy  PinningPolicy
}

// PolicySet is an ordered collection of host policies plus an optional
// default policy applied when nothing else matches. Order is significant:
// it is the tie-break for "first exact match" and "first among equally
// specific wildcards" (spec.md's Open Question on iteration order — this
// module never stores HostPolicy in a map for exactly that reason).
type PolicySet struct {
	Policies      []HostPolicy
	DefaultPolicy *PinningPolicy
}

// Empty is the registry's initial policy set: no policies, no default.
func Empty() PolicySet {
	return PolicySet{}
}
