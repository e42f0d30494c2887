/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did models the legacy Aries DID Document: a subject
// DID, ordered recipient/routing verkeys, and exactly one service endpoint.
package did

import "github.com/pkg/errors"

// ErrInvalidDoc is raised when a Doc fails its structural invariants.
var ErrInvalidDoc = errors.New("did: invalid did document")

// Doc is the legacy Aries form: no verification-method graph, just the
// flattened fields the connection protocol actually needs.
type Doc struct {
	ID              string   `json:"id"`
	RecipientKeys   []string `json:"recipientKeys"`
	RoutingKeys     []string `json:"routingKeys,omitempty"`
	ServiceEndpoint string   `json:"serviceEndpoint"`
}

// Validate enforces the structural invariant: at least one recipient key
// and exactly one service endpoint. Routing keys may be empty.
func (d *Doc) Validate() error {
	if d == nil || len(d.RecipientKeys) == 0 {
		return errors.Wrap(ErrInvalidDoc, "missing recipient keys")
	}

	if d.ServiceEndpoint == "" {
		return errors.Wrap(ErrInvalidDoc, "missing service endpoint")
	}

	return nil
}
