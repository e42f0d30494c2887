/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoc_Validate(t *testing.T) {
	t.Run("test valid doc", func(t *testing.T) {
		d := &Doc{
			ID:              "did:key:z123",
			RecipientKeys:   []string{"abc"},
			ServiceEndpoint: "https://example.com/endpoint",
		}
		require.NoError(t, d.Validate())
	})

	t.Run("test missing recipient keys", func(t *testing.T) {
		d := &Doc{ID: "did:key:z123", ServiceEndpoint: "https://example.com"}
		err := d.Validate()
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidDoc)
	})

	t.Run("test missing service endpoint", func(t *testing.T) {
		d := &Doc{ID: "did:key:z123", RecipientKeys: []string{"abc"}}
		err := d.Validate()
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidDoc)
	})

	t.Run("test nil doc", func(t *testing.T) {
		var d *Doc
		require.ErrorIs(t, d.Validate(), ErrInvalidDoc)
	})
}
