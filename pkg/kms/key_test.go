/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateEd25519(t *testing.T) {
	t.Run("test random generation", func(t *testing.T) {
		kp, err := GenerateEd25519(nil)
		require.NoError(t, err)
		require.Equal(t, ED25519, kp.Public.Type)
		require.Len(t, kp.Public.Raw, ed25519.PublicKeySize)
		require.Len(t, kp.Private, ed25519.PrivateKeySize)
	})

	t.Run("test deterministic seed derivation", func(t *testing.T) {
		seed := make([]byte, ed25519.SeedSize)
		for i := range seed {
			seed[i] = byte(i)
		}

		kp1, err := GenerateEd25519(seed)
		require.NoError(t, err)

		kp2, err := GenerateEd25519(seed)
		require.NoError(t, err)

		require.Equal(t, kp1.Public.Raw, kp2.Public.Raw)
	})

	t.Run("test bad seed length", func(t *testing.T) {
		_, err := GenerateEd25519(make([]byte, 4))
		require.Error(t, err)
		require.Contains(t, err.Error(), "seed must be")
	})
}

func TestKeyBase58(t *testing.T) {
	kp, err := GenerateEd25519(nil)
	require.NoError(t, err)
	require.NotEmpty(t, kp.Public.Base58())
}

func TestPublicEd25519toX25519(t *testing.T) {
	t.Run("test valid conversion round-trips through scalar mult", func(t *testing.T) {
		kp, err := GenerateEd25519(nil)
		require.NoError(t, err)

		xPub, err := PublicEd25519toX25519(kp.Public.Raw)
		require.NoError(t, err)
		require.Len(t, xPub, 32)

		xPriv, err := PrivateEd25519toX25519(kp.Private)
		require.NoError(t, err)

		derivedPub, err := X25519Base(xPriv)
		require.NoError(t, err)
		require.Equal(t, xPub, derivedPub)
	})

	t.Run("test invalid public key length", func(t *testing.T) {
		_, err := PublicEd25519toX25519(make([]byte, 10))
		require.Error(t, err)
	})

	t.Run("test invalid private key length", func(t *testing.T) {
		_, err := PrivateEd25519toX25519(make([]byte, 10))
		require.Error(t, err)
	})
}
