package remoteconfig

import "crypto/ecdsa"

// MapSecretLookup is the simplest SecretLookup: a fixed id->secret map,
// grounded on the teacher's plain map-adaptor convention (client.HeadersFromMap).
type MapSecretLookup map[string][]byte

func (m MapSecretLookup) Secret(id string) ([]byte, bool) {
	s, ok := m[id]
	return s, ok
}

// MapPublicKeyLookup is the simplest PublicKeyLookup: a fixed id->key map.
type MapPublicKeyLookup map[string]*ecdsa.PublicKey

func (m MapPublicKeyLookup) PublicKey(id string) (*ecdsa.PublicKey, bool) {
	k, ok := m[id]
	return k, ok
}
