/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package messagepickup implements the client-pull pickup protocol: status
// queries, batched delivery, and acknowledged deletion over a
// mediator-held, per-account FIFO mailbox.
package messagepickup

// Message type URIs, normalized (prefix-stripped) form.
const (
	StatusRequestMsgType    = "messagepickup/2.0/status-request"
	StatusMsgType           = "messagepickup/2.0/status"
	DeliveryRequestMsgType  = "messagepickup/2.0/delivery-request"
	DeliveryMsgType         = "messagepickup/2.0/delivery"
	MessagesReceivedMsgType = "messagepickup/2.0/messages-received"
)

// StatusRequest optionally scopes the query to one recipient key; absent,
// it spans every key registered to the requesting account.
type StatusRequest struct {
	ID           string `json:"@id"`
	Type         string `json:"@type"`
	RecipientKey string `json:"recipient_key,omitempty"`
}

// Status reports how many undelivered entries match a StatusRequest.
type Status struct {
	ID           string `json:"@id"`
	Type         string `json:"@type"`
	MessageCount int    `json:"message_count"`
	RecipientKey string `json:"recipient_key,omitempty"`
}

// DeliveryRequest asks for up to Limit undelivered entries, oldest first.
type DeliveryRequest struct {
	ID           string `json:"@id"`
	Type         string `json:"@type"`
	Limit        int    `json:"limit"`
	RecipientKey string `json:"recipient_key,omitempty"`
}

// Attachment is one delivered mailbox entry: the opaque envelope bytes the
// mediator originally stored, plus the id the client must echo in
// MessagesReceived to acknowledge it.
type Attachment struct {
	ID   string `json:"@id"`
	Data string `json:"data"` // base64url of the stored envelope bytes
}

// Delivery carries up to a DeliveryRequest's limit of undelivered entries.
type Delivery struct {
	ID          string       `json:"@id"`
	Type        string       `json:"@type"`
	Attachments []Attachment `json:"attachments"`
}

// MessagesReceived acknowledges delivery of the listed message ids; the
// mediator deletes them and replies with updated Status.
type MessagesReceived struct {
	ID            string   `json:"@id"`
	Type          string   `json:"@type"`
	MessageIDList []string `json:"message_id_list"`
}
