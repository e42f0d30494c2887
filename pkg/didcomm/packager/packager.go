/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package packager combines the legacy authcrypt/anoncrypt packers into a
// single Pack/Unpack surface that also performs forward wrapping/peeling
// across a routing-key chain.
package packager

import (
	"encoding/base64"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/aries-community/didcomm-core/internal/log"
	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer"
)

var logger = log.New("didcomm/packager")

// Packager routes Pack calls to the authcrypt packer (sender key present)
// or the anoncrypt packer (sender key absent), and routes Unpack calls by
// inspecting the envelope's "alg" field.
type Packager struct {
	authcrypt packer.Packer
	anoncrypt packer.Packer
}

// New builds a Packager from its two constituent legacy packers.
func New(authcrypt, anoncrypt packer.Packer) *Packager {
	return &Packager{authcrypt: authcrypt, anoncrypt: anoncrypt}
}

// Pack produces the envelope a transport should send: the innermost layer
// targets recipientVKs (authcrypt if senderVK is non-empty, else
// anoncrypt); each routingVKs entry then wraps the prior envelope in an
// anoncrypt Forward, outermost last.
func (p *Packager) Pack(payload []byte, senderVK string, recipientVKs, routingVKs []string) ([]byte, error) {
	var senderPub []byte
	if senderVK != "" {
		senderPub = base58.Decode(senderVK)
	}

	recipientPubs := make([][]byte, len(recipientVKs))
	for i, vk := range recipientVKs {
		recipientPubs[i] = base58.Decode(vk)
	}

	inner := p.anoncrypt
	if senderVK != "" {
		inner = p.authcrypt
	}

	cur, err := inner.Pack(payload, senderPub, recipientPubs)
	if err != nil {
		return nil, errors.Wrap(err, "packager: pack inner envelope")
	}

	// routingVKs is ordered outermost-last. The
	// first hop applied wraps straight to the final recipient; each
	// subsequent hop wraps to the previous hop's key, so the peeling order
	// (outermost first) recovers rN, then rN-1, ..., then r1, then the
	// recipient.
	target := recipientVKs[0]

	for _, hop := range routingVKs {
		fwd := model.Forward{
			Type: forwardTypeURI,
			To:   target,
			Msg:  cur,
		}

		fwdBytes, marshalErr := json.Marshal(fwd)
		if marshalErr != nil {
			return nil, errors.Wrap(marshalErr, "packager: marshal forward message")
		}

		cur, err = p.anoncrypt.Pack(fwdBytes, nil, [][]byte{base58.Decode(hop)})
		if err != nil {
			return nil, errors.Wrap(err, "packager: wrap forward hop")
		}

		target = hop
	}

	return cur, nil
}

const forwardTypeURI = "https://didcomm.org/routing/1.0/forward"

// Unpack decrypts envelope, peeling exactly one layer. Callers that expect
// a Forward must re-invoke Unpack on msg.Msg to continue peeling, mirroring
// how a mediator processes a store-and-forward hop.
func (p *Packager) Unpack(envelope []byte) (*packer.UnpackedEnvelope, error) {
	alg := gjson.GetBytes(mustDecodeProtected(envelope), "alg").String()

	switch alg {
	case "Authcrypt":
		return p.authcrypt.Unpack(envelope)
	case "Anoncrypt":
		return p.anoncrypt.Unpack(envelope)
	default:
		return nil, errors.New("packager: unrecognized envelope alg")
	}
}

// mustDecodeProtected best-effort decodes the protected header for alg
// sniffing; any failure yields an empty document and Unpack reports
// ErrInvalidStructure-equivalent via "unrecognized envelope alg".
func mustDecodeProtected(envelope []byte) []byte {
	prot := gjson.GetBytes(envelope, "protected").String()
	if prot == "" {
		return nil
	}

	if b, err := base64.URLEncoding.DecodeString(prot); err == nil {
		return b
	}

	b, _ := base64.RawURLEncoding.DecodeString(prot)

	return b
}
