/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package wallet implements the logical vault that owns an agent's keys,
// maps DIDs to verkeys, and exposes the pack/unpack surface the rest of
// this core consumes. A Wallet is exclusively owned by one agent instance;
// internal synchronization makes it safe to share across that agent's
// connections.
package wallet

import (
	"sync"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/pkg/did/fingerprint"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packager"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer"
	"github.com/aries-community/didcomm-core/pkg/kms"
)

// ErrRecordNotFound covers a DID with no known verkey.
var ErrRecordNotFound = errors.New("wallet: record not found")

// Wallet owns keys and exposes DID-scoped sign/pack/unpack operations.
type Wallet struct {
	mu       sync.RWMutex
	keys     *kms.Manager
	didToVK  map[string]string
	packager *packager.Packager
}

// New builds a Wallet backed by its own key manager. Call SetPackager once
// its authcrypt/anoncrypt packers have been constructed over this same
// Wallet as their packer.KeySource.
func New() *Wallet {
	return &Wallet{
		keys:    kms.NewManager(),
		didToVK: make(map[string]string),
	}
}

// SetPackager wires the Packager this Wallet uses for Pack/Unpack. Split
// from New because the packers need a packer.KeySource (this Wallet) to be
// constructed, a one-time wiring cycle resolved by construction order
// rather than a cyclic reference.
func (w *Wallet) SetPackager(p *packager.Packager) {
	w.packager = p
}

// CreateAndStoreMyDID generates a fresh Ed25519 keypair (deterministically
// from seed if provided) and derives a did:key DID from its verkey,
// returning (DID, verkey).
func (w *Wallet) CreateAndStoreMyDID(seed []byte) (string, string, error) {
	vk, err := w.keys.Create(seed)
	if err != nil {
		return "", "", errors.Wrap(err, "wallet: create did")
	}

	did, err := fingerprint.CreateDIDKey(base58.Decode(vk))
	if err != nil {
		return "", "", errors.Wrap(err, "wallet: derive did:key")
	}

	w.mu.Lock()
	w.didToVK[did] = vk
	w.mu.Unlock()

	return did, vk, nil
}

// KeyForDID returns the verkey registered for did.
func (w *Wallet) KeyForDID(did string) (string, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	vk, ok := w.didToVK[did]
	if !ok {
		return "", ErrRecordNotFound
	}

	return vk, nil
}

// Sign signs bytes with the private key backing verkey.
func (w *Wallet) Sign(verkey string, bytes []byte) ([]byte, error) {
	return w.keys.Sign(verkey, bytes)
}

// Verify checks a signature against a base58 verkey.
func (w *Wallet) Verify(verkeyB58 string, bytes, sig []byte) bool {
	return kms.Verify(base58.Decode(verkeyB58), bytes, sig)
}

// Pack encrypts plaintext for recipientVKs (authcrypt if senderVK is
// non-empty, else anoncrypt), wrapping through routingVKs if given.
func (w *Wallet) Pack(senderVK string, recipientVKs, routingVKs []string, plaintext []byte) ([]byte, error) {
	if w.packager == nil {
		return nil, errors.New("wallet: packager not wired")
	}

	return w.packager.Pack(plaintext, senderVK, recipientVKs, routingVKs)
}

// Unpack decrypts an envelope addressed to one of this wallet's keys.
func (w *Wallet) Unpack(envelope []byte) (*packer.UnpackedEnvelope, error) {
	if w.packager == nil {
		return nil, errors.New("wallet: packager not wired")
	}

	return w.packager.Unpack(envelope)
}

// HasKey implements packer.KeySource.
func (w *Wallet) HasKey(verkey string) bool {
	_, err := w.keys.Get(verkey)
	return err == nil
}

// PrivateKey implements packer.KeySource.
func (w *Wallet) PrivateKey(verkey string) ([]byte, error) {
	kp, err := w.keys.Get(verkey)
	if err != nil {
		return nil, ErrRecordNotFound
	}

	return kp.Private, nil
}
