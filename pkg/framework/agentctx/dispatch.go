/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agentctx

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/common/service"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/didexchange"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/mediator"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/messagepickup"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/problemreport"
)

// ErrUnroutableType is returned when an inbound message's normalized @type
// matches none of the protocol families this Context understands.
var ErrUnroutableType = errors.New("agentctx: no protocol handles this message type")

// ErrUnknownConnection is returned when a connections-family message
// references a thread-id this Context has no Record for.
var ErrUnknownConnection = errors.New("agentctx: no connection record for thread-id")

const (
	familyConnections = "connections/1.0/"
	familyPickup      = "messagepickup/2.0/"
	familyMediation   = "coordinate-mediation/1.0/"
	familyRouting     = "routing/1.0/"
)

// Reply is one dispatch outcome: at most one of its fields is non-nil,
// mirroring the closed tagged-variant the inbound @type is parsed into.
// Dispatch returns a nil *Reply when the inbound message needs no response
// (an Ack or a Forward).
type Reply struct {
	Response      *didexchange.Response
	Ack           *didexchange.Ack
	ProblemReport *problemreport.Report
	MediateGrant  *mediator.MediateGrant
	KeylistUpdate *mediator.KeylistUpdateResponse
	Keylist       *mediator.Keylist
	Status        *messagepickup.Status
	Delivery      *messagepickup.Delivery
}

// Dispatch decodes plaintext's normalized @type and routes it to the
// protocol collaborator that owns it, returning whatever reply (if any)
// the caller should pack and send back. accountKey identifies the sender
// for mediator/pickup operations that are scoped per client account; it is
// unused for connections-family messages, which carry their own thread-id.
func (c *Context) Dispatch(accountKey string, plaintext []byte) (*Reply, error) {
	msg, err := service.ParseDIDCommMsgMap(plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "agentctx: parse inbound message")
	}

	switch {
	case strings.HasPrefix(msg.Type(), familyConnections):
		return c.dispatchConnections(msg, plaintext)
	case strings.HasPrefix(msg.Type(), familyMediation):
		return c.dispatchMediation(accountKey, msg, plaintext)
	case strings.HasPrefix(msg.Type(), familyPickup):
		return c.dispatchPickup(accountKey, msg, plaintext)
	case strings.HasPrefix(msg.Type(), familyRouting):
		return c.dispatchRouting(plaintext)
	default:
		logger.Warnf("agentctx: unroutable message type %s", msg.Type())
		return nil, ErrUnroutableType
	}
}

func (c *Context) dispatchConnections(msg service.DIDCommMsgMap, plaintext []byte) (*Reply, error) {
	switch msg.Type() {
	case didexchange.RequestMsgType:
		var req didexchange.Request
		if err := msg.Decode(&req); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode connections request")
		}

		invRecs := c.Connections.ByThreadID(msg.ParentThreadID())
		if len(invRecs) == 0 {
			invRecs = c.Connections.ByThreadID(msg.ThreadID())
		}

		if len(invRecs) == 0 {
			return nil, ErrUnknownConnection
		}

		invRec, ok := c.Connections.Get(invRecs[0])
		if !ok {
			return nil, ErrUnknownConnection
		}

		unlock := c.Connections.Lock(invRec.ConnectionID)
		defer unlock()

		resp, _, report, err := c.Inviter.HandleRequest(invRec, &req)
		if err != nil {
			return nil, err
		}

		if report != nil {
			return &Reply{ProblemReport: report}, nil
		}

		return &Reply{Response: resp}, nil

	case didexchange.ResponseMsgType:
		rec, err := c.connectionByThreadID(msg.ThreadID())
		if err != nil {
			return nil, err
		}

		var resp didexchange.Response
		if decErr := msg.Decode(&resp); decErr != nil {
			return nil, errors.Wrap(decErr, "agentctx: decode connections response")
		}

		unlock := c.Connections.Lock(rec.ConnectionID)
		defer unlock()

		ack, _, report, err := c.Invitee.HandleResponse(rec, &resp)
		if err != nil {
			return nil, err
		}

		if report != nil {
			return &Reply{ProblemReport: report}, nil
		}

		return &Reply{Ack: ack}, nil

	case didexchange.AckMsgType:
		rec, err := c.connectionByThreadID(msg.ThreadID())
		if err != nil {
			return nil, err
		}

		var ack didexchange.Ack
		if decErr := msg.Decode(&ack); decErr != nil {
			return nil, errors.Wrap(decErr, "agentctx: decode connections ack")
		}

		unlock := c.Connections.Lock(rec.ConnectionID)
		defer unlock()

		_, report, err := c.Inviter.HandleAck(rec, &ack)
		if err != nil {
			return nil, err
		}

		if report != nil {
			return &Reply{ProblemReport: report}, nil
		}

		return nil, nil

	default:
		return nil, ErrUnroutableType
	}
}

// connectionByThreadID resolves the single Record a Response or Ack
// targets. Requests are the only connections-family message that can
// legitimately fan out to several Records sharing one thread-id; a
// Response/Ack always continues one specific, already-forked connection,
// so the first match past the Invited state is authoritative. (A pairwise
// invitation's own Invited Record shares its thread-id with every fork.)
func (c *Context) connectionByThreadID(thid string) (*didexchange.Record, error) {
	for _, id := range c.Connections.ByThreadID(thid) {
		rec, ok := c.Connections.Get(id)
		if ok && rec.State != didexchange.StateInvited {
			return rec, nil
		}
	}

	return nil, ErrUnknownConnection
}

func (c *Context) dispatchMediation(accountKey string, msg service.DIDCommMsgMap, _ []byte) (*Reply, error) {
	if c.Mediator == nil {
		return nil, errors.New("agentctx: this context is not configured as a mediator")
	}

	switch msg.Type() {
	case mediator.MediateRequestMsgType:
		var req mediator.MediateRequest
		if err := msg.Decode(&req); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode mediate request")
		}

		return &Reply{MediateGrant: c.Mediator.HandleMediateRequest(accountKey, &req)}, nil

	case mediator.KeylistUpdateMsgType:
		var upd mediator.KeylistUpdate
		if err := msg.Decode(&upd); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode keylist update")
		}

		resp, err := c.Mediator.HandleKeylistUpdate(accountKey, &upd)
		if err != nil {
			return nil, err
		}

		return &Reply{KeylistUpdate: resp}, nil

	case mediator.KeylistQueryMsgType:
		var q mediator.KeylistQuery
		if err := msg.Decode(&q); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode keylist query")
		}

		keylist, err := c.Mediator.HandleKeylistQuery(accountKey, &q)
		if err != nil {
			return nil, err
		}

		return &Reply{Keylist: keylist}, nil

	default:
		return nil, ErrUnroutableType
	}
}

// dispatchRouting handles an inbound routing/1.0/forward: it hands the
// still-packed inner message to the mediator's store-and-forward path so
// the addressed recipient picks it up via messagepickup, independent of
// whether the caller reached Dispatch by unpacking the forward itself.
//
// Forward.Msg carries the next hop's raw JSON payload, so this decodes
// plaintext with encoding/json directly rather than through
// DIDCommMsgMap.Decode's mapstructure path, which has no hook for
// recovering a nested json.RawMessage from an already-generic map.
func (c *Context) dispatchRouting(plaintext []byte) (*Reply, error) {
	if c.Mediator == nil {
		return nil, errors.New("agentctx: this context is not configured as a mediator")
	}

	var fwd model.Forward
	if err := json.Unmarshal(plaintext, &fwd); err != nil {
		return nil, errors.Wrap(err, "agentctx: decode forward")
	}

	if err := c.Mediator.RouteForward(fwd.To, fwd.Msg); err != nil {
		return nil, errors.Wrap(err, "agentctx: route forward")
	}

	return nil, nil
}

func (c *Context) dispatchPickup(accountKey string, msg service.DIDCommMsgMap, _ []byte) (*Reply, error) {
	switch msg.Type() {
	case messagepickup.StatusRequestMsgType:
		var req messagepickup.StatusRequest
		if err := msg.Decode(&req); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode status request")
		}

		return &Reply{Status: c.Pickup.HandleStatusRequest(accountKey, &req)}, nil

	case messagepickup.DeliveryRequestMsgType:
		var req messagepickup.DeliveryRequest
		if err := msg.Decode(&req); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode delivery request")
		}

		delivery, err := c.Pickup.HandleDeliveryRequest(accountKey, &req)
		if err != nil {
			return nil, err
		}

		return &Reply{Delivery: delivery}, nil

	case messagepickup.MessagesReceivedMsgType:
		var mr messagepickup.MessagesReceived
		if err := msg.Decode(&mr); err != nil {
			return nil, errors.Wrap(err, "agentctx: decode messages received")
		}

		status, err := c.Pickup.HandleMessagesReceived(accountKey, &mr)
		if err != nil {
			return nil, err
		}

		return &Reply{Status: status}, nil

	default:
		return nil, ErrUnroutableType
	}
}
