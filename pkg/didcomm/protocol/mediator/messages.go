/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mediator implements the mediator coordination protocol:
// registration (MediateRequest/Grant/Deny) and keylist maintenance
// (KeylistUpdate/KeylistQuery) for clients that want an always-online agent
// to hold their inbound routing keys.
package mediator

// Message type URIs, normalized (prefix-stripped) form.
const (
	MediateRequestMsgType        = "coordinate-mediation/1.0/mediate-request"
	MediateGrantMsgType          = "coordinate-mediation/1.0/mediate-grant"
	MediateDenyMsgType           = "coordinate-mediation/1.0/mediate-deny"
	KeylistUpdateMsgType         = "coordinate-mediation/1.0/keylist-update"
	KeylistUpdateResponseMsgType = "coordinate-mediation/1.0/keylist-update-response"
	KeylistQueryMsgType          = "coordinate-mediation/1.0/keylist-query"
	KeylistMsgType               = "coordinate-mediation/1.0/keylist"
)

// MediateRequest asks the mediator to accept this client for routing.
type MediateRequest struct {
	ID   string `json:"@id"`
	Type string `json:"@type"`
}

// MediateGrant is the affirmative reply: the endpoint and routing-key chain
// the client should publish in its own DID-docs from now on.
type MediateGrant struct {
	ID          string   `json:"@id"`
	Type        string   `json:"@type"`
	Endpoint    string   `json:"routing_endpoint"`
	RoutingKeys []string `json:"routing_keys"`
}

// MediateDeny is the negative reply.
type MediateDeny struct {
	ID     string   `json:"@id"`
	Type   string   `json:"@type"`
	Reason []string `json:"mediator_terms,omitempty"`
}

// UpdateAction is one KeylistUpdate entry's requested mutation.
type UpdateAction string

// The two supported actions.
const (
	ActionAdd    UpdateAction = "add"
	ActionRemove UpdateAction = "remove"
)

// UpdateResult is the per-item outcome of applying a KeylistUpdate entry.
type UpdateResult string

// Results. Add/Remove of an already-(un)registered key is reported
// no_change rather than success.
const (
	ResultSuccess   UpdateResult = "success"
	ResultNoChange  UpdateResult = "no_change"
	ResultClientErr UpdateResult = "client_error"
)

// KeylistUpdateItem is one requested mutation.
type KeylistUpdateItem struct {
	RecipientKey string       `json:"recipient_key"`
	Action       UpdateAction `json:"action"`
}

// KeylistUpdate requests recipient-key registration changes, applied item
// by item in order (see Coordinator.HandleKeylistUpdate).
type KeylistUpdate struct {
	ID      string              `json:"@id"`
	Type    string              `json:"@type"`
	Updates []KeylistUpdateItem `json:"updates"`
}

// KeylistUpdateResponseItem is one item's outcome.
type KeylistUpdateResponseItem struct {
	RecipientKey string       `json:"recipient_key"`
	Action       UpdateAction `json:"action"`
	Result       UpdateResult `json:"result"`
}

// KeylistUpdateResponse reports per-item results for a KeylistUpdate.
type KeylistUpdateResponse struct {
	ID      string                      `json:"@id"`
	Type    string                      `json:"@type"`
	Updated []KeylistUpdateResponseItem `json:"updated"`
}

// KeylistQuery asks the mediator for the client's currently registered
// recipient keys.
type KeylistQuery struct {
	ID   string `json:"@id"`
	Type string `json:"@type"`
}

// Keylist is the reply to KeylistQuery.
type Keylist struct {
	ID   string   `json:"@id"`
	Type string   `json:"@type"`
	Keys []string `json:"keys"`
}
