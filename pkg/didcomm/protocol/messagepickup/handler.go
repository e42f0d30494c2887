/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messagepickup

import "github.com/google/uuid"

// Handler answers the three pickup messages against a Store, for a given
// account key.
type Handler struct {
	store *Store
}

// NewHandler builds a Handler over store.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleStatusRequest answers StatusRequest.
func (h *Handler) HandleStatusRequest(accountKey string, req *StatusRequest) *Status {
	return &Status{
		ID:           uuid.NewString(),
		Type:         StatusMsgType,
		MessageCount: h.store.Status(accountKey, req.RecipientKey),
		RecipientKey: req.RecipientKey,
	}
}

// HandleDeliveryRequest answers DeliveryRequest, clamping limit and
// returning entries oldest-first.
func (h *Handler) HandleDeliveryRequest(accountKey string, req *DeliveryRequest) (*Delivery, error) {
	atts, err := h.store.Deliver(accountKey, req.RecipientKey, req.Limit)
	if err != nil {
		return nil, err
	}

	return &Delivery{ID: uuid.NewString(), Type: DeliveryMsgType, Attachments: atts}, nil
}

// HandleMessagesReceived acknowledges delivery, deletes the listed
// entries, and replies with updated Status across every key.
func (h *Handler) HandleMessagesReceived(accountKey string, msg *MessagesReceived) (*Status, error) {
	if err := h.store.Ack(accountKey, msg.MessageIDList); err != nil {
		return nil, err
	}

	return &Status{
		ID:           uuid.NewString(),
		Type:         StatusMsgType,
		MessageCount: h.store.Status(accountKey, ""),
	}, nil
}
