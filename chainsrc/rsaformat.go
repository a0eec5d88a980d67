package chainsrc

import (
	"crypto/rsa"
	"encoding/asn1"
	"errors"
	"math/big"
)

// pkcs1PublicKey mirrors the unexported type crypto/x509 marshals RSA public
// keys with; re-declared here since x509 does not export a standalone
// "encode this *rsa.PublicKey as PKCS#1" helper outside of certificate
// creation.
type pkcs1PublicKey struct {
	N *big.Int
	E int
}

// rsaPKCS1PublicKeyBytes returns the DER encoding of SEQUENCE{modulus,exponent}
// for an RSA public key — the "external representation" hash.SPKIHash expects
// for RSA keys per the spec's key table.
func rsaPKCS1PublicKeyBytes(pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.N == nil {
		return nil, errors.New("chainsrc: nil RSA public key")
	}
	return asn1.Marshal(pkcs1PublicKey{N: pub.N, E: pub.E})
}
