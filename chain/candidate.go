// Package chain turns a host-supplied certificate chain into the derived
// data the trust evaluator compares pins against: per-certificate SPKI/cert
// hashes tagged with a chain position, and a redacted telemetry summary.
package chain

import (
	"github.com/sardanioss/pinguard/chainsrc"
	"github.com/sardanioss/pinguard/hash"
)

// Scope is a chain position (Leaf/Intermediate/Root) or, for a pin's scope
// field only, the wildcard Any. Candidates are never tagged Any.
type Scope int

const (
	Leaf Scope = iota
	Intermediate
	Root
	Any
)

func (s Scope) String() string {
	switch s {
	case Leaf:
		return "LEAF"
	case Intermediate:
		return "INTERMEDIATE"
	case Root:
		return "ROOT"
	case Any:
		return "ANY"
	default:
		return "UNKNOWN"
	}
}

// Contains reports whether a candidate at scope s is eligible to match a pin
// whose scope is pinScope: ANY always matches, otherwise the scopes must be
// identical.
func (s Scope) Contains(pinScope Scope) bool {
	if pinScope == Any {
		return true
	}
	return s == pinScope
}

// Candidate is the derived, per-certificate data the evaluator matches pins
// against. SPKIHash is empty when the public key could not be hashed — that
// empty string can never equal a base64-of-SHA-256 pin hash, which is the
// sole path by which a hashing failure is allowed to leak into evaluation.
type Candidate struct {
	Scope           Scope
	SPKIHash        string
	CertificateHash string
	DER             []byte
}

// IsCA reports whether the candidate occupies an intermediate or root
// position.
func (c Candidate) IsCA() bool {
	return c.Scope == Intermediate || c.Scope == Root
}

// Build derives a Candidate for every certificate in certs, in the order
// presented. Index 0 is always Leaf — including when len(certs) == 1, so a
// single-certificate chain is a lone Leaf and can never satisfy a
// scope=Root pin — and the last index is Root only when len(certs) > 1.
func Build(certs []chainsrc.Certificate) []Candidate {
	out := make([]Candidate, len(certs))
	for i, c := range certs {
		var scope Scope
		switch {
		case i == 0:
			scope = Leaf
		case i == len(certs)-1:
			scope = Root
		default:
			scope = Intermediate
		}

		der := c.DER()
		spkiHash := ""
		if alg, bits, external, ok := c.PublicKeyInfo(); ok {
			if h, err := hash.SPKIHash(alg, bits, external); err == nil {
				spkiHash = h
			}
		}

		out[i] = Candidate{
			Scope:           scope,
			SPKIHash:        spkiHash,
			CertificateHash: hash.CertificateHash(der),
			DER:             der,
		}
	}
	return out
}
