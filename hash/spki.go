// Package hash computes the SHA-256 digests the trust evaluator compares
// pins against: a whole-certificate digest and a synthetic SubjectPublicKeyInfo
// digest assembled from an algorithm identifier and the raw key bits, since
// Go's x509 package does not expose a standalone "hash this key as SPKI"
// primitive for keys obtained outside of a parsed certificate.
package hash

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// KeyAlgorithm identifies the public-key algorithm/curve combination used to
// pick the hard-coded AlgorithmIdentifier DER fragment for SPKI assembly.
type KeyAlgorithm int

const (
	RSA KeyAlgorithm = iota
	ECP256
	ECP384
	ECP521
)

func (a KeyAlgorithm) String() string {
	switch a {
	case RSA:
		return "RSA"
	case ECP256:
		return "EC-P256"
	case ECP384:
		return "EC-P384"
	case ECP521:
		return "EC-P521"
	default:
		return "unknown"
	}
}

// algorithmIdentifiers holds the complete DER-encoded AlgorithmIdentifier
// SEQUENCE for each supported key type, byte-for-byte as specified.
var algorithmIdentifiers = map[KeyAlgorithm][]byte{
	RSA:    mustHex("300d06092a864886f70d0101010500"),
	ECP256: mustHex("301306072a8648ce3d020106082a8648ce3d030107"),
	ECP384: mustHex("301006072a8648ce3d020106052b81040022"),
	ECP521: mustHex("301006072a8648ce3d020106052b81040023"),
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("hash: invalid hex literal in algorithm identifier table: " + err.Error())
	}
	return b
}

// Kind enumerates the error taxonomy hasher failures fall into, generalizing
// the teacher's TransportError Category field (transport/errors.go) rather
// than introducing an unfamiliar third-party errors package.
type Kind int

const (
	KindUnsupportedKeyType Kind = iota
)

// Error is the single error type the hasher raises. It never crosses into a
// live trust evaluation (spec: hashing failures there become empty strings).
type Error struct {
	Op    string
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hash: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("hash: %s: unsupported key type", e.Op)
}

func (e *Error) Unwrap() error { return e.Cause }

func unsupportedKeyType(op string) error {
	return &Error{Op: op, Kind: KindUnsupportedKeyType}
}

// CertificateHash returns base64(SHA-256(der)) for a DER-encoded certificate.
func CertificateHash(der []byte) string {
	sum := sha256.Sum256(der)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// SPKIHash assembles SEQUENCE{AlgorithmIdentifier, BIT STRING(keyBytes)} for
// the given algorithm and returns base64(SHA-256(spki)). keyBytes is the
// platform's external representation of the public key (RSA: PKCS#1
// SEQUENCE{modulus,exponent}; EC: uncompressed point 04||X||Y).
//
// keySizeBits is accepted for symmetry with the spec's lookup table (the
// table is keyed only by algorithm/curve today; RSA key size does not change
// which AlgorithmIdentifier fragment applies) and for future algorithms that
// may need it.
func SPKIHash(alg KeyAlgorithm, keySizeBits int, keyBytes []byte) (string, error) {
	algID, ok := algorithmIdentifiers[alg]
	if !ok || len(keyBytes) == 0 {
		return "", unsupportedKeyType("spki_hash")
	}

	var b cryptobyte.Builder
	b.AddASN1(casn1.SEQUENCE, func(child *cryptobyte.Builder) {
		child.AddBytes(algID)
		child.AddASN1BitString(keyBytes)
	})
	spki, err := b.Bytes()
	if err != nil {
		return "", &Error{Op: "spki_hash", Kind: KindUnsupportedKeyType, Cause: err}
	}

	sum := sha256.Sum256(spki)
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}
