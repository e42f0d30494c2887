/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package packer defines the narrow Packer contract DIDComm v1 legacy
// envelopes implement and the UnpackedEnvelope result shape
// consumers see after a successful unpack.
package packer

// UnpackedEnvelope is what a Packer.Unpack call yields: the decrypted
// message plaintext, the recipient verkey the envelope resolved against,
// and (authcrypt only) the sender verkey.
type UnpackedEnvelope struct {
	Message    []byte
	ToVerKey   string
	FromVerKey string // empty for anoncrypt
}

// Packer packs/unpacks one wire encoding of the legacy DIDComm JWE.
type Packer interface {
	// Pack encrypts payload to recipientPubKeys (base58-decoded raw Ed25519
	// bytes). senderPubKey is nil/empty for anoncrypt.
	Pack(payload []byte, senderPubKey []byte, recipientPubKeys [][]byte) ([]byte, error)
	// Unpack decrypts envelope, returning the first recipient key this
	// packer's KeySource resolves.
	Unpack(envelope []byte) (*UnpackedEnvelope, error)
	// EncodingType identifies this packer in the outer "typ"/"alg" wire
	// fields so a packager can route an inbound envelope to it.
	EncodingType() string
}

// KeySource resolves a base58 verkey to the raw private key material needed
// to decrypt — the narrow cut of the wallet a Packer depends on.
type KeySource interface {
	// HasKey reports whether the wallet holds the private key for verkey.
	HasKey(verkey string) bool
	// PrivateKey returns the raw Ed25519 private key for verkey.
	PrivateKey(verkey string) ([]byte, error)
}
