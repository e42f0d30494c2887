/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cryptobox

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func genBoxKeyPair(t *testing.T) (pub, priv []byte) {
	t.Helper()

	p, s, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	return p[:], s[:]
}

func TestEasyEasyOpen(t *testing.T) {
	senderPub, senderPriv := genBoxKeyPair(t)
	recipientPub, recipientPriv := genBoxKeyPair(t)

	nonce := make([]byte, 24)
	_, err := rand.Read(nonce)
	require.NoError(t, err)

	payload := []byte("authenticated payload")

	t.Run("test round trip", func(t *testing.T) {
		ct, err := Easy(payload, nonce, recipientPub, senderPriv)
		require.NoError(t, err)

		pt, err := EasyOpen(ct, nonce, senderPub, recipientPriv)
		require.NoError(t, err)
		require.Equal(t, payload, pt)
	})

	t.Run("test wrong nonce length rejected", func(t *testing.T) {
		_, err := Easy(payload, nonce[:10], recipientPub, senderPriv)
		require.Error(t, err)
	})

	t.Run("test open fails with wrong sender key", func(t *testing.T) {
		ct, err := Easy(payload, nonce, recipientPub, senderPriv)
		require.NoError(t, err)

		otherPub, _ := genBoxKeyPair(t)

		_, err = EasyOpen(ct, nonce, otherPub, recipientPriv)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("test open fails on tampered ciphertext", func(t *testing.T) {
		ct, err := Easy(payload, nonce, recipientPub, senderPriv)
		require.NoError(t, err)

		ct[0] ^= 0xFF

		_, err = EasyOpen(ct, nonce, senderPub, recipientPriv)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})
}

func TestSealSealOpen(t *testing.T) {
	recipientPub, recipientPriv := genBoxKeyPair(t)
	payload := []byte("anonymous payload")

	t.Run("test round trip", func(t *testing.T) {
		sealed, err := Seal(payload, recipientPub, rand.Reader)
		require.NoError(t, err)

		pt, err := SealOpen(sealed, recipientPub, recipientPriv)
		require.NoError(t, err)
		require.Equal(t, payload, pt)
	})

	t.Run("test default rand source when nil", func(t *testing.T) {
		sealed, err := Seal(payload, recipientPub, nil)
		require.NoError(t, err)

		pt, err := SealOpen(sealed, recipientPub, recipientPriv)
		require.NoError(t, err)
		require.Equal(t, payload, pt)
	})

	t.Run("test two seals of the same payload differ", func(t *testing.T) {
		sealed1, err := Seal(payload, recipientPub, rand.Reader)
		require.NoError(t, err)

		sealed2, err := Seal(payload, recipientPub, rand.Reader)
		require.NoError(t, err)

		require.NotEqual(t, sealed1, sealed2)
	})

	t.Run("test open fails with wrong recipient key", func(t *testing.T) {
		sealed, err := Seal(payload, recipientPub, rand.Reader)
		require.NoError(t, err)

		_, otherPriv := genBoxKeyPair(t)

		_, err = SealOpen(sealed, recipientPub, otherPriv)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})

	t.Run("test truncated input rejected", func(t *testing.T) {
		_, err := SealOpen(make([]byte, 10), recipientPub, recipientPriv)
		require.ErrorIs(t, err, ErrDecryptionFailed)
	})
}
