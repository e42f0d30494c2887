/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/ed25519"
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
)

// ErrKeyNotFound mirrors the wallet-level WalletRecordNotFound failure mode
// for key lookups.
var ErrKeyNotFound = errors.New("kms: key not found")

// Manager stores Ed25519 keypairs and signs on their behalf. It is safe for
// concurrent use; a Manager is meant to be owned by exactly one Wallet.
type Manager struct {
	mu    sync.RWMutex
	pairs map[string]*KeyPair // keyed by base58 public key, guarded by mu

	cache gcache.Cache // recently-used key-handle cache, concurrency-safe on its own
}

// NewManager constructs an empty key manager with a bounded handle cache.
func NewManager() *Manager {
	return &Manager{
		pairs: make(map[string]*KeyPair),
		cache: gcache.New(256).LRU().Expiration(10 * time.Minute).Build(),
	}
}

// Create generates (or deterministically derives, if seed is non-nil) a new
// Ed25519 keypair and stores it, returning its base58 verkey.
func (m *Manager) Create(seed []byte) (string, error) {
	kp, err := GenerateEd25519(seed)
	if err != nil {
		return "", err
	}

	vk := kp.Public.Base58()

	m.mu.Lock()
	m.pairs[vk] = kp
	m.mu.Unlock()

	m.cache.Set(vk, kp) //nolint:errcheck

	return vk, nil
}

// Get returns the keypair for a base58 verkey, consulting the handle cache
// before falling back to the backing map.
func (m *Manager) Get(verkey string) (*KeyPair, error) {
	if v, err := m.cache.Get(verkey); err == nil {
		return v.(*KeyPair), nil
	}

	m.mu.RLock()
	kp, ok := m.pairs[verkey]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}

	m.cache.Set(verkey, kp) //nolint:errcheck

	return kp, nil
}

// Sign signs bytes with the Ed25519 private key for verkey.
func (m *Manager) Sign(verkey string, msg []byte) ([]byte, error) {
	kp, err := m.Get(verkey)
	if err != nil {
		return nil, err
	}

	return ed25519.Sign(kp.Private, msg), nil
}

// Verify checks an Ed25519 signature against a raw 32-byte public key (a
// base58 verkey already decoded), without requiring the key to be present
// in this manager.
func Verify(verkeyB58Pub []byte, msg, sig []byte) bool {
	if len(verkeyB58Pub) != ed25519.PublicKeySize {
		return false
	}

	return ed25519.Verify(verkeyB58Pub, msg, sig)
}
