/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cryptobox implements the two NaCl-box flavors the legacy DIDComm
// v1 envelope needs: an authenticated box ("Easy"/"EasyOpen", sender and
// recipient both known) and an anonymous sealed box ("Seal"/"SealOpen",
// libsodium's crypto_box_seal construction: an ephemeral keypair is
// generated per call and its nonce is derived from
// blake2b(ephemeral_pub || recipient_pub) so no nonce needs to travel on
// the wire alongside the ciphertext).
package cryptobox

import (
	"crypto/rand"
	"io"

	"github.com/minio/blake2b-simd"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/box"
)

// ErrDecryptionFailed covers any box/seal-open failure: wrong key, tampered
// ciphertext, or truncated input. It deliberately carries no detail about
// which, no-partial-plaintext-leak requirement.
var ErrDecryptionFailed = errors.New("cryptobox: decryption failed")

// Easy authenticated-encrypts payload from senderPriv to recipientPub using
// the given 24-byte nonce.
func Easy(payload, nonce, recipientPub, senderPriv []byte) ([]byte, error) {
	if len(nonce) != 24 {
		return nil, errors.New("cryptobox: nonce must be 24 bytes")
	}

	var (
		n   [24]byte
		rPK [32]byte
		sSK [32]byte
	)

	copy(n[:], nonce)
	copy(rPK[:], recipientPub)
	copy(sSK[:], senderPriv)

	return box.Seal(nil, payload, &n, &rPK, &sSK), nil
}

// EasyOpen authenticated-decrypts a box produced by Easy.
func EasyOpen(ciphertext, nonce, senderPub, recipientPriv []byte) ([]byte, error) {
	if len(nonce) != 24 {
		return nil, errors.New("cryptobox: nonce must be 24 bytes")
	}

	var (
		n   [24]byte
		sPK [32]byte
		rSK [32]byte
	)

	copy(n[:], nonce)
	copy(sPK[:], senderPub)
	copy(rSK[:], recipientPriv)

	out, ok := box.Open(nil, ciphertext, &n, &sPK, &rSK)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	return out, nil
}

// Seal anonymously encrypts payload to recipientPub: an ephemeral keypair
// is generated, the nonce is derived deterministically from the ephemeral
// and recipient public keys, and the ephemeral public key is prefixed to
// the ciphertext so SealOpen can recover it.
func Seal(payload, recipientPub []byte, randSource io.Reader) ([]byte, error) {
	if randSource == nil {
		randSource = rand.Reader
	}

	ephPub, ephPriv, err := box.GenerateKey(randSource)
	if err != nil {
		return nil, errors.Wrap(err, "cryptobox: generate ephemeral keypair")
	}

	var rPK [32]byte

	copy(rPK[:], recipientPub)

	nonce := sealNonce(ephPub[:], recipientPub)

	ct := box.Seal(nil, payload, &nonce, &rPK, ephPriv)

	out := make([]byte, 0, len(ephPub)+len(ct))
	out = append(out, ephPub[:]...)
	out = append(out, ct...)

	return out, nil
}

// SealOpen reverses Seal given the recipient's full keypair.
func SealOpen(sealed, recipientPub, recipientPriv []byte) ([]byte, error) {
	if len(sealed) < 32 {
		return nil, ErrDecryptionFailed
	}

	ephPub := sealed[:32]
	ct := sealed[32:]

	nonce := sealNonce(ephPub, recipientPub)

	var (
		ePK [32]byte
		rSK [32]byte
	)

	copy(ePK[:], ephPub)
	copy(rSK[:], recipientPriv)

	out, ok := box.Open(nil, ct, &nonce, &ePK, &rSK)
	if !ok {
		return nil, ErrDecryptionFailed
	}

	return out, nil
}

func sealNonce(ephPub, recipientPub []byte) [24]byte {
	h := blake2b.New256()
	h.Write(ephPub)       //nolint:errcheck
	h.Write(recipientPub) //nolint:errcheck
	sum := h.Sum(nil)

	var nonce [24]byte
	copy(nonce[:], sum[:24])

	return nonce
}
