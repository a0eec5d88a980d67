package chainsrc

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/sardanioss/pinguard/hash"
)

// selfSignedCert builds a minimal self-signed certificate around pub/priv
// and returns it parsed back the way crypto/tls hands certificates to a
// verifier: a *x509.Certificate with Raw populated.
func selfSignedCert(t *testing.T, commonName string, pub any, priv any) *x509.Certificate {
	t.Helper()

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
	if err != nil {
		t.Fatalf("x509.CreateCertificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("x509.ParseCertificate: %v", err)
	}
	return cert
}

func TestX509Adaptor_RSAKeyFeedsSPKIHash(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	cert := selfSignedCert(t, "rsa.example.com", &priv.PublicKey, priv)

	adapted := X509Adaptor([]*x509.Certificate{cert})
	if len(adapted) != 1 {
		t.Fatalf("len(adapted) = %d, want 1", len(adapted))
	}

	if len(adapted[0].DER()) == 0 {
		t.Fatal("DER() returned no bytes")
	}

	cn, ok := adapted[0].SubjectSummary()
	if !ok || cn != "rsa.example.com" {
		t.Errorf("SubjectSummary() = (%q, %v), want (%q, true)", cn, ok, "rsa.example.com")
	}

	alg, bits, external, ok := adapted[0].PublicKeyInfo()
	if !ok {
		t.Fatal("PublicKeyInfo() ok = false for a supported RSA key")
	}
	if alg != hash.RSA {
		t.Errorf("alg = %v, want hash.RSA", alg)
	}
	if bits != 2048 {
		t.Errorf("bits = %d, want 2048", bits)
	}

	got, err := hash.SPKIHash(alg, bits, external)
	if err != nil {
		t.Fatalf("SPKIHash: %v", err)
	}
	if len(got) != 44 {
		t.Errorf("SPKIHash length = %d, want 44", len(got))
	}

	again, err := hash.SPKIHash(alg, bits, external)
	if err != nil || again != got {
		t.Errorf("SPKIHash is not deterministic for the same key: %q vs %q (err=%v)", got, again, err)
	}
}

func TestX509Adaptor_ECP256KeyFeedsSPKIHash(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}
	cert := selfSignedCert(t, "ec.example.com", &priv.PublicKey, priv)

	adapted := X509Adaptor([]*x509.Certificate{cert})

	alg, bits, external, ok := adapted[0].PublicKeyInfo()
	if !ok {
		t.Fatal("PublicKeyInfo() ok = false for a supported EC P-256 key")
	}
	if alg != hash.ECP256 {
		t.Errorf("alg = %v, want hash.ECP256", alg)
	}
	if bits != 256 {
		t.Errorf("bits = %d, want 256", bits)
	}
	if len(external) == 0 || external[0] != 0x04 {
		t.Errorf("external representation = %x, want an uncompressed point starting with 0x04", external)
	}

	got, err := hash.SPKIHash(alg, bits, external)
	if err != nil {
		t.Fatalf("SPKIHash: %v", err)
	}
	if len(got) != 44 {
		t.Errorf("SPKIHash length = %d, want 44", len(got))
	}
}

func TestX509Adaptor_DifferentKeysProduceDifferentSPKIHashes(t *testing.T) {
	rsaPriv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey: %v", err)
	}
	ecPriv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey: %v", err)
	}

	rsaCert := selfSignedCert(t, "rsa.example.com", &rsaPriv.PublicKey, rsaPriv)
	ecCert := selfSignedCert(t, "ec.example.com", &ecPriv.PublicKey, ecPriv)

	adapted := X509Adaptor([]*x509.Certificate{rsaCert, ecCert})

	rsaAlg, rsaBits, rsaExternal, ok := adapted[0].PublicKeyInfo()
	if !ok {
		t.Fatal("PublicKeyInfo() ok = false for RSA cert")
	}
	ecAlg, ecBits, ecExternal, ok := adapted[1].PublicKeyInfo()
	if !ok {
		t.Fatal("PublicKeyInfo() ok = false for EC cert")
	}

	rsaHash, err := hash.SPKIHash(rsaAlg, rsaBits, rsaExternal)
	if err != nil {
		t.Fatalf("SPKIHash(rsa): %v", err)
	}
	ecHash, err := hash.SPKIHash(ecAlg, ecBits, ecExternal)
	if err != nil {
		t.Fatalf("SPKIHash(ec): %v", err)
	}

	if rsaHash == ecHash {
		t.Error("distinct keys produced the same SPKI hash")
	}
	if adapted[0].DER()[0] == adapted[1].DER()[0] && string(adapted[0].DER()) == string(adapted[1].DER()) {
		t.Error("distinct certificates produced identical DER")
	}
}
