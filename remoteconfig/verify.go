package remoteconfig

import (
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
)

// Kind categorizes why verification refused a blob, following the
// teacher's transport.TransportError taxonomy-field pattern.
type Kind int

const (
	UnsupportedSignatureType Kind = iota
	SecretNotFound
	PublicKeyNotFound
	SignatureMismatch
)

func (k Kind) String() string {
	switch k {
	case UnsupportedSignatureType:
		return "UNSUPPORTED_SIGNATURE_TYPE"
	case SecretNotFound:
		return "SECRET_NOT_FOUND"
	case PublicKeyNotFound:
		return "PUBLIC_KEY_NOT_FOUND"
	case SignatureMismatch:
		return "SIGNATURE_MISMATCH"
	default:
		return "UNKNOWN"
	}
}

// Error reports why Verify rejected a blob. It is never wrapped around a
// lower-level cause: every rejection here is a verification decision, not
// an I/O failure.
type Error struct {
	Op   string
	Kind Kind
}

func (e *Error) Error() string {
	return "remoteconfig: " + e.Op + ": " + e.Kind.String()
}

// SecretLookup resolves an HMAC secret by the id carried in a blob's
// SignatureType. ok is false when id is unknown.
type SecretLookup interface {
	Secret(id string) (secret []byte, ok bool)
}

// PublicKeyLookup resolves an ECDSA public key by the id carried in a
// blob's SignatureType. ok is false when id is unknown. The returned key
// must support ECDSA-over-SHA-256 (P-256, P-384, or P-521).
type PublicKeyLookup interface {
	PublicKey(id string) (key *ecdsa.PublicKey, ok bool)
}

// Verify checks blob.Signature against blob.Payload using the method
// named by blob.SignatureType and returns the payload unchanged only once
// verification has passed. Callers must never decode blob.Payload before
// calling Verify, and must discard it entirely on a non-nil error.
//
//   - HMAC_SHA256(id): secrets.Secret(id) must resolve, and
//     hmac.Equal(HMAC-SHA256(secret, payload), signature) must hold.
//     hmac.Equal is used specifically for its constant-time comparison,
//     per spec.md's "avoid timing leaks" requirement.
//   - PUBLIC_KEY(id): keys.PublicKey(id) must resolve, and
//     ecdsa.VerifyASN1(key, SHA256(payload), signature) must hold — the
//     ASN.1 form is the IEEE X9.62 encoding spec.md requires.
func Verify(blob RemoteConfigBlob, secrets SecretLookup, keys PublicKeyLookup) ([]byte, error) {
	switch blob.SignatureType.Kind {
	case HMACSHA256:
		secret, ok := secretFor(blob.SignatureType.HMACSecretID, secrets)
		if !ok {
			return nil, &Error{Op: "verify", Kind: SecretNotFound}
		}
		mac := hmac.New(sha256.New, secret)
		mac.Write(blob.Payload)
		expected := mac.Sum(nil)
		if !hmac.Equal(expected, blob.Signature) {
			return nil, &Error{Op: "verify", Kind: SignatureMismatch}
		}
		return blob.Payload, nil

	case PublicKey:
		key, ok := publicKeyFor(blob.SignatureType.PublicKeyID, keys)
		if !ok {
			return nil, &Error{Op: "verify", Kind: PublicKeyNotFound}
		}
		digest := sha256.Sum256(blob.Payload)
		if !ecdsa.VerifyASN1(key, digest[:], blob.Signature) {
			return nil, &Error{Op: "verify", Kind: SignatureMismatch}
		}
		return blob.Payload, nil

	default:
		return nil, &Error{Op: "verify", Kind: UnsupportedSignatureType}
	}
}

func secretFor(id string, secrets SecretLookup) ([]byte, bool) {
	if secrets == nil {
		return nil, false
	}
	return secrets.Secret(id)
}

func publicKeyFor(id string, keys PublicKeyLookup) (*ecdsa.PublicKey, bool) {
	if keys == nil {
		return nil, false
	}
	return keys.PublicKey(id)
}
