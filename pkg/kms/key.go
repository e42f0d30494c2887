/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms implements key generation, storage, signing, and the
// Ed25519/X25519 conversion primitives consumed by the DIDComm packers.
package kms

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/curve25519"
)

// Type identifies the cryptographic family of a Key.
type Type string

// Supported key types. Other types (BBS+, ECDSA, ...) belong to the
// anoncreds/VC subsystem and are out of scope for this core.
const (
	ED25519 Type = "Ed25519VerificationKey2018"
	X25519  Type = "X25519KeyAgreementKey2019"
)

// ErrUnsupportedKeyType names a key Type this package does not know how to
// validate or convert. No function in this package returns it.
var ErrUnsupportedKeyType = errors.New("kms: unsupported key type")

// Key is a (key_type, raw_bytes) pair. Raw holds the bare public key bytes,
// as GenerateEd25519 produces them; fingerprint.Decode strips the multicodec
// prefix from a multibase fingerprint. Key is a plain struct: nothing checks
// or strips a prefix from bytes assigned to Raw directly.
type Key struct {
	Type Type
	Raw  []byte
}

// Base58 returns the bare base58 (no multicodec prefix) encoding of the key.
func (k Key) Base58() string {
	return base58.Encode(k.Raw)
}

// KeyPair is a generated public/private pair for one key Type.
type KeyPair struct {
	Public  Key
	Private []byte
}

// GenerateEd25519 creates a new Ed25519 signing keypair. If seed is nil, a
// fresh random keypair is generated; otherwise the seed deterministically
// derives it (seed must be ed25519.SeedSize bytes).
func GenerateEd25519(seed []byte) (*KeyPair, error) {
	var (
		pub  ed25519.PublicKey
		priv ed25519.PrivateKey
		err  error
	)

	if seed == nil {
		pub, priv, err = ed25519.GenerateKey(rand.Reader)
	} else {
		if len(seed) != ed25519.SeedSize {
			return nil, errors.Errorf("kms: seed must be %d bytes", ed25519.SeedSize)
		}

		priv = ed25519.NewKeyFromSeed(seed)
		pub = priv.Public().(ed25519.PublicKey)
	}

	if err != nil {
		return nil, errors.Wrap(err, "kms: generate ed25519 key")
	}

	return &KeyPair{
		Public:  Key{Type: ED25519, Raw: append([]byte(nil), pub...)},
		Private: append([]byte(nil), priv...),
	}, nil
}

// PublicEd25519toX25519 performs the canonical birational map from an
// Ed25519 public signing key to its X25519 key-agreement counterpart. The
// conversion is computed on demand at encrypt/decrypt time; it is never
// persisted.
func PublicEd25519toX25519(edPub []byte) ([]byte, error) {
	if len(edPub) != ed25519.PublicKeySize {
		return nil, errors.Errorf("kms: invalid ed25519 public key length %d", len(edPub))
	}

	bigEndianY := make([]byte, ed25519.PublicKeySize)
	copy(bigEndianY, edPub)

	x, err := edPublicKeyToCurve25519(bigEndianY)
	if err != nil {
		return nil, errors.Wrap(err, "kms: convert ed25519 public key to x25519")
	}

	return x, nil
}

// PrivateEd25519toX25519 converts an Ed25519 private key (64-byte seed||pub
// form) to its X25519 scalar for Diffie-Hellman operations.
func PrivateEd25519toX25519(edPriv []byte) ([]byte, error) {
	if len(edPriv) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("kms: invalid ed25519 private key length %d", len(edPriv))
	}

	return edPrivateKeyToCurve25519(edPriv), nil
}

// X25519Base multiplies a scalar against the curve25519 base point,
// producing the corresponding public key. Exposed for tests that need to
// cross-check a derived X25519 keypair.
func X25519Base(scalar []byte) ([]byte, error) {
	return curve25519.X25519(scalar, curve25519.Basepoint)
}
