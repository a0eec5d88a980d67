// Package chainsrc holds the inbound adaptor contracts the trust evaluator
// requires from the host platform: a certificate view that exposes DER bytes
// and public-key material without forcing the engine to depend on a specific
// TLS stack, and the system-trust outcome callback. These are the only
// cryptographic primitives the core consumes from outside (spec §6); the
// TLS handshake, the HTTP/URL-session transport, and client-identity loading
// for mTLS stay on the host side of this boundary.
package chainsrc

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"

	"github.com/sardanioss/pinguard/hash"
)

// Certificate is one element of a presented chain, in host-supplied order
// (leaf first). Implementations must be side-effect free: the evaluator may
// call these methods more than once per evaluation.
type Certificate interface {
	// DER returns the raw DER encoding of the certificate.
	DER() []byte

	// PublicKeyInfo returns the key algorithm, key size in bits, and the
	// platform's external representation of the public key (RSA: PKCS#1
	// SEQUENCE{modulus,exponent}; EC: uncompressed point 04||X||Y). ok is
	// false when the key algorithm/size is not one hash.SPKIHash supports
	// or the external representation cannot be obtained.
	PublicKeyInfo() (alg hash.KeyAlgorithm, keySizeBits int, external []byte, ok bool)

	// SubjectSummary returns the certificate's subject "summary" string
	// (commonly the Subject Common Name) and whether one was present.
	SubjectSummary() (string, bool)
}

// SystemTrust evaluates a chain against the host platform's native trust
// store and TLS policy, collapsing it to a single boolean plus an optional
// diagnostic string — the only outcome the evaluator consumes from whatever
// system-trust mechanism the platform uses.
type SystemTrust interface {
	Evaluate(ctx context.Context, chain []Certificate, host string) (trusted bool, errText string)
}

// x509Certificate adapts a *x509.Certificate to the Certificate interface.
type x509Certificate struct {
	cert *x509.Certificate
}

// X509Adaptor wraps a parsed certificate chain (the shape
// crypto/tls.ConnectionState.PeerCertificates and VerifiedChains produce) as
// []Certificate, covering the common case so most callers never hand-write
// an adaptor.
func X509Adaptor(certs []*x509.Certificate) []Certificate {
	out := make([]Certificate, len(certs))
	for i, c := range certs {
		out[i] = x509Certificate{cert: c}
	}
	return out
}

func (x x509Certificate) DER() []byte {
	return x.cert.Raw
}

func (x x509Certificate) SubjectSummary() (string, bool) {
	cn := x.cert.Subject.CommonName
	if cn == "" {
		return "", false
	}
	return cn, true
}

func (x x509Certificate) PublicKeyInfo() (hash.KeyAlgorithm, int, []byte, bool) {
	switch pub := x.cert.PublicKey.(type) {
	case *rsa.PublicKey:
		der, err := rsaPKCS1PublicKeyBytes(pub)
		if err != nil {
			return 0, 0, nil, false
		}
		return hash.RSA, pub.N.BitLen(), der, true
	case *ecdsa.PublicKey:
		alg, ok := ecAlgorithmFor(pub.Curve)
		if !ok {
			return 0, 0, nil, false
		}
		return alg, pub.Curve.Params().BitSize, elliptic.Marshal(pub.Curve, pub.X, pub.Y), true
	default:
		return 0, 0, nil, false
	}
}

func ecAlgorithmFor(curve elliptic.Curve) (hash.KeyAlgorithm, bool) {
	switch curve {
	case elliptic.P256():
		return hash.ECP256, true
	case elliptic.P384():
		return hash.ECP384, true
	case elliptic.P521():
		return hash.ECP521, true
	default:
		return 0, false
	}
}
