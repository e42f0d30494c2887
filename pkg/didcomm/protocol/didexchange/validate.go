/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didexchange

import "github.com/pkg/errors"

// ErrInvalidDidDoc mirrors pkg/did.ErrInvalidDoc for the flattened
// DocAttached shape embedded in connection/request payloads.
var ErrInvalidDidDoc = errors.New("didexchange: invalid embedded did document")

// validateEmbeddedDoc enforces the DID-doc invariant on the connection
// payload carried inside a Request or Response: at least one recipient
// key, and a non-empty service endpoint.
func validateEmbeddedDoc(conn *Connection) error {
	if conn == nil || conn.DIDDoc == nil {
		return errors.Wrap(ErrInvalidDidDoc, "missing did_doc")
	}

	if len(conn.DIDDoc.RecipientKeys) == 0 {
		return errors.Wrap(ErrInvalidDidDoc, "missing recipient keys")
	}

	if conn.DIDDoc.ServiceEndpoint == "" {
		return errors.Wrap(ErrInvalidDidDoc, "missing service endpoint")
	}

	return nil
}
