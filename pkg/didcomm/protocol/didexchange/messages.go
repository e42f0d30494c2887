/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didexchange implements the pairwise connection protocol: the
// inviter and invitee half-protocols that bootstrap a secure channel
// through invitation, request, signed response, and acknowledgement.
package didexchange

import "github.com/aries-community/didcomm-core/pkg/didcomm/common/model"

// Message type URIs, normalized (prefix-stripped) form — see
// service.NormalizeType. Messages this package builds carry this bare form
// in @type; no prefix is added on emission.
const (
	InvitationMsgType = "connections/1.0/invitation"
	RequestMsgType    = "connections/1.0/request"
	ResponseMsgType   = "connections/1.0/response"
	AckMsgType        = "notification/1.0/ack"
)

const didCommServiceType = "did-communication"

// Service is an inline out-of-band service block.
type Service struct {
	ID              string   `json:"id,omitempty"`
	Type            string   `json:"type"`
	RecipientKeys   []string `json:"recipientKeys"`
	RoutingKeys     []string `json:"routingKeys,omitempty"`
	ServiceEndpoint string   `json:"serviceEndpoint"`
}

// Invitation is either pairwise (inlined keys/endpoint) or public/OOB
// (resolvable DID, or an inline services array).
type Invitation struct {
	ID              string    `json:"@id"`
	Type            string    `json:"@type"`
	Label           string    `json:"label,omitempty"`
	RecipientKeys   []string  `json:"recipientKeys,omitempty"`
	RoutingKeys     []string  `json:"routingKeys,omitempty"`
	ServiceEndpoint string    `json:"serviceEndpoint,omitempty"`
	DID             string    `json:"did,omitempty"`
	Services        []Service `json:"services,omitempty"`
}

// IsPublic reports whether the invitation carries a resolvable DID or
// inline services rather than inlined recipient keys.
func (i *Invitation) IsPublic() bool {
	return i.DID != "" || len(i.Services) > 0
}

// firstDIDCommService returns the first inline service block whose type is
// "did-communication".
func (i *Invitation) firstDIDCommService() (*Service, bool) {
	for idx := range i.Services {
		if i.Services[idx].Type == didCommServiceType {
			return &i.Services[idx], true
		}
	}

	return nil, false
}

// Connection is the payload carried inside a Request and, signed, inside a
// Response's connection~sig attachment.
type Connection struct {
	DID    string       `json:"did"`
	DIDDoc *DocAttached `json:"did_doc,omitempty"`
}

// DocAttached is the legacy-Aries flattened DID-doc shape embedded in a
// connection record, mirroring pkg/did.Doc's fields directly (no
// verification-method graph).
type DocAttached struct {
	ID              string   `json:"id"`
	RecipientKeys   []string `json:"recipientKeys"`
	RoutingKeys     []string `json:"routingKeys,omitempty"`
	ServiceEndpoint string   `json:"serviceEndpoint"`
}

// Request is sent Invitee → Inviter to begin the exchange.
type Request struct {
	ID         string        `json:"@id"`
	Type       string        `json:"@type"`
	Label      string        `json:"label,omitempty"`
	Connection Connection    `json:"connection"`
	Thread     *model.Thread `json:"~thread,omitempty"`
}

// Response is sent Inviter → Invitee, carrying the signed connection
// attachment.
type Response struct {
	ID                  string               `json:"@id"`
	Type                string               `json:"@type"`
	Thread              *model.Thread        `json:"~thread,omitempty"`
	ConnectionSignature *ConnectionSignature `json:"connection~sig"`
}

// Ack closes the loop Invitee → Inviter.
type Ack struct {
	ID     string        `json:"@id"`
	Type   string        `json:"@type"`
	Status string        `json:"status"`
	Thread *model.Thread `json:"~thread,omitempty"`
}

// ackStatusOK is the only status this core emits; "PENDING" is a peer-only
// concern this core never needs to interpret.
const ackStatusOK = "OK"
