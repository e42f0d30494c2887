/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aries-community/didcomm-core/pkg/storage"
)

func TestProvider_OpenStore(t *testing.T) {
	p := NewProvider()

	s1, err := p.OpenStore("a")
	require.NoError(t, err)

	s2, err := p.OpenStore("a")
	require.NoError(t, err)

	require.NoError(t, s1.Put("k", []byte("v")))

	v, err := s2.Get("k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

func TestStore_PutGetDelete(t *testing.T) {
	p := NewProvider()
	s, err := p.OpenStore("x")
	require.NoError(t, err)

	t.Run("test get missing key", func(t *testing.T) {
		_, err := s.Get("missing")
		require.ErrorIs(t, err, storage.ErrDataNotFound)
	})

	t.Run("test put then get", func(t *testing.T) {
		require.NoError(t, s.Put("k1", []byte("v1")))

		v, err := s.Get("k1")
		require.NoError(t, err)
		require.Equal(t, []byte("v1"), v)
	})

	t.Run("test delete missing key is not an error", func(t *testing.T) {
		require.NoError(t, s.Delete("never-existed"))
	})

	t.Run("test delete removes key", func(t *testing.T) {
		require.NoError(t, s.Put("k2", []byte("v2")))
		require.NoError(t, s.Delete("k2"))

		_, err := s.Get("k2")
		require.ErrorIs(t, err, storage.ErrDataNotFound)
	})
}

func TestStore_Iterate(t *testing.T) {
	p := NewProvider()
	s, err := p.OpenStore("x")
	require.NoError(t, err)

	require.NoError(t, s.Put("mailbox/acct1/b", []byte("2")))
	require.NoError(t, s.Put("mailbox/acct1/a", []byte("1")))
	require.NoError(t, s.Put("mailbox/acct2/a", []byte("other")))

	var seen []string

	err = s.Iterate("mailbox/acct1/", func(key string, value []byte) bool {
		seen = append(seen, key)
		return true
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mailbox/acct1/a", "mailbox/acct1/b"}, seen)

	t.Run("test early stop", func(t *testing.T) {
		var count int

		err := s.Iterate("mailbox/", func(key string, value []byte) bool {
			count++
			return false
		})
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}
