package remoteconfig

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

type signatureTypeWire struct {
	Kind         string `json:"kind"`
	HMACSecretID string `json:"hmac_secret_id,omitempty"`
	PublicKeyID  string `json:"public_key_id,omitempty"`
}

type blobWire struct {
	Payload       string            `json:"payload"`
	Signature     string            `json:"signature"`
	SignatureType signatureTypeWire `json:"signature_type"`
}

// MarshalJSON encodes the SignatureType tagged union as {"kind": ...,
// plus whichever id field applies}.
func (s SignatureType) MarshalJSON() ([]byte, error) {
	return json.Marshal(toSignatureTypeWire(s))
}

// UnmarshalJSON decodes a SignatureType, rejecting unknown kind values.
func (s *SignatureType) UnmarshalJSON(data []byte) error {
	var wire signatureTypeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("remoteconfig: decode signature type: %w", err)
	}
	v, err := fromSignatureTypeWire(wire)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalJSON encodes the blob with its byte fields (payload and
// signature) as standard, padded base64 strings.
func (b RemoteConfigBlob) MarshalJSON() ([]byte, error) {
	return json.Marshal(blobWire{
		Payload:       base64.StdEncoding.EncodeToString(b.Payload),
		Signature:     base64.StdEncoding.EncodeToString(b.Signature),
		SignatureType: toSignatureTypeWire(b.SignatureType),
	})
}

// UnmarshalJSON decodes a blob previously produced by MarshalJSON.
func (b *RemoteConfigBlob) UnmarshalJSON(data []byte) error {
	var wire blobWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("remoteconfig: decode blob: %w", err)
	}

	payload, err := base64.StdEncoding.DecodeString(wire.Payload)
	if err != nil {
		return fmt.Errorf("remoteconfig: decode payload: %w", err)
	}
	signature, err := base64.StdEncoding.DecodeString(wire.Signature)
	if err != nil {
		return fmt.Errorf("remoteconfig: decode signature: %w", err)
	}
	sigType, err := fromSignatureTypeWire(wire.SignatureType)
	if err != nil {
		return err
	}

	b.Payload = payload
	b.Signature = signature
	b.SignatureType = sigType
	return nil
}

func toSignatureTypeWire(s SignatureType) signatureTypeWire {
	return signatureTypeWire{
		Kind:         s.Kind.String(),
		HMACSecretID: s.HMACSecretID,
		PublicKeyID:  s.PublicKeyID,
	}
}

func fromSignatureTypeWire(wire signatureTypeWire) (SignatureType, error) {
	switch wire.Kind {
	case "HMAC_SHA256":
		return HMAC(wire.HMACSecretID), nil
	case "PUBLIC_KEY":
		return Public(wire.PublicKeyID), nil
	default:
		return SignatureType{}, fmt.Errorf("remoteconfig: unknown signature type %q", wire.Kind)
	}
}
