package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mrand "math/rand/v2"
	"sync"
)

// KeyManager manages ephemeral JWT signing and verification keys for an
// instance. Keys are generated on the fly and only exist in memory, so all
// tokens become invalid when the service restarts.
//
// Multiple signing keys are supported for load distribution; signing
// operations pick a key at random.
type KeyManager struct {
	Verifier *Verifier
	KeySet   *KeySet

	mu      sync.RWMutex
	signers []*Signer
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) that will be stamped into and
	// validated in tokens.
	Issuer string

	// NumKeys specifies how many signing keys to generate.
	// Defaults to 1 if not specified. Maximum is 10.
	NumKeys int
}

// NewEphemeralKeyManager creates a KeyManager with freshly generated
// Ed25519 keys and a verifier wired to the same KeySet.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 1
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	signers := make([]*Signer, 0, numKeys)

	for i := 0; i < numKeys; i++ {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		signer, err := GenerateSigner(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}

		signers = append(signers, signer)
		keyset.AddSigner(signer)
	}

	return &KeyManager{
		Verifier: NewVerifier(keyset, opts.Issuer),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// GetSigner returns a randomly selected signer from the available keys.
func (km *KeyManager) GetSigner() *Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[mrand.IntN(len(km.signers))]
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

func generateRandomKeyID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}
