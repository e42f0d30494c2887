/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer/legacy/anoncrypt"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer/legacy/authcrypt"
	"github.com/aries-community/didcomm-core/pkg/kms"
)

type keyring struct {
	pairs map[string]*kms.KeyPair
}

func newParty(t *testing.T) (*keyring, string, []byte) {
	t.Helper()

	kp, err := kms.GenerateEd25519(nil)
	require.NoError(t, err)

	vk := kp.Public.Base58()

	return &keyring{pairs: map[string]*kms.KeyPair{vk: kp}}, vk, kp.Public.Raw
}

func (k *keyring) HasKey(verkey string) bool {
	_, ok := k.pairs[verkey]
	return ok
}

func (k *keyring) PrivateKey(verkey string) ([]byte, error) {
	kp, ok := k.pairs[verkey]
	if !ok {
		return nil, kms.ErrKeyNotFound
	}

	return kp.Private, nil
}

func merge(keyrings ...*keyring) *keyring {
	out := &keyring{pairs: make(map[string]*kms.KeyPair)}

	for _, kr := range keyrings {
		for k, v := range kr.pairs {
			out.pairs[k] = v
		}
	}

	return out
}

func TestPackager_PackUnpack(t *testing.T) {
	senderKeys, senderVK, _ := newParty(t)
	recipientKeys, recipientVK, _ := newParty(t)

	all := merge(senderKeys, recipientKeys)

	payload := []byte(`{"@type":"https://didcomm.org/basicmessage/1.0/message","content":"hi"}`)

	t.Run("test authcrypt path when sender key present", func(t *testing.T) {
		p := New(authcrypt.New(all), anoncrypt.New(all))

		env, err := p.Pack(payload, senderVK, []string{recipientVK}, nil)
		require.NoError(t, err)

		out, err := p.Unpack(env)
		require.NoError(t, err)
		require.Equal(t, payload, out.Message)
		require.Equal(t, senderVK, out.FromVerKey)
	})

	t.Run("test anoncrypt path when sender key absent", func(t *testing.T) {
		p := New(authcrypt.New(all), anoncrypt.New(all))

		env, err := p.Pack(payload, "", []string{recipientVK}, nil)
		require.NoError(t, err)

		out, err := p.Unpack(env)
		require.NoError(t, err)
		require.Equal(t, payload, out.Message)
		require.Empty(t, out.FromVerKey)
	})

	t.Run("test single routing hop wraps a forward envelope", func(t *testing.T) {
		mediatorKeys, mediatorVK, _ := newParty(t)

		p := New(authcrypt.New(all), anoncrypt.New(merge(all, mediatorKeys)))

		env, err := p.Pack(payload, senderVK, []string{recipientVK}, []string{mediatorVK})
		require.NoError(t, err)

		// the mediator peels one anoncrypt layer, revealing a Forward to the recipient
		mediatorPackager := New(authcrypt.New(mediatorKeys), anoncrypt.New(mediatorKeys))

		out, err := mediatorPackager.Unpack(env)
		require.NoError(t, err)

		var fwd model.Forward
		require.NoError(t, json.Unmarshal(out.Message, &fwd))
		require.Equal(t, recipientVK, fwd.To)
		require.Equal(t, forwardTypeURI, fwd.Type)

		recipientPackager := New(authcrypt.New(all), anoncrypt.New(all))

		innerOut, err := recipientPackager.Unpack(fwd.Msg)
		require.NoError(t, err)
		require.Equal(t, payload, innerOut.Message)
	})

	t.Run("test unpack rejects garbage envelope", func(t *testing.T) {
		p := New(authcrypt.New(all), anoncrypt.New(all))

		_, err := p.Unpack([]byte(`{"protected":"not-base64!!"}`))
		require.Error(t, err)
	})
}
