/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agentctx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	mockclock "github.com/aries-community/didcomm-core/internal/mock/clock"
	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/didexchange"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/mediator"
)

func TestNew(t *testing.T) {
	t.Run("test default context has no mediator", func(t *testing.T) {
		ctx, err := New()
		require.NoError(t, err)
		require.NotNil(t, ctx.Wallet)
		require.NotNil(t, ctx.Connections)
		require.NotNil(t, ctx.Inviter)
		require.NotNil(t, ctx.Invitee)
		require.NotNil(t, ctx.Mailbox)
		require.NotNil(t, ctx.Pickup)
		require.Nil(t, ctx.Mediator)
	})

	t.Run("test WithMediator wires a coordinator", func(t *testing.T) {
		ctx, err := New(WithMediator("https://mediator.example.com", []string{"rk1"}))
		require.NoError(t, err)
		require.NotNil(t, ctx.Mediator)
	})

	t.Run("test WithClock is threaded to the inviter", func(t *testing.T) {
		ctx, err := New(WithClock(mockclock.MockClock{Fixed: 42}))
		require.NoError(t, err)
		require.NotNil(t, ctx.Inviter)
	})
}

func marshal(t *testing.T, v interface{}) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)

	return b
}

func TestDispatch_ConnectionsFamily(t *testing.T) {
	inviterCtx, err := New()
	require.NoError(t, err)

	inv, invRec, err := inviterCtx.Inviter.CreateInvitation("alice", nil, "https://alice.example.com", nil)
	require.NoError(t, err)

	inviteeCtx, err := New()
	require.NoError(t, err)

	inviteeRec, err := inviteeCtx.Invitee.AcceptInvitation(inv)
	require.NoError(t, err)

	req, inviteeRec, err := inviteeCtx.Invitee.PrepareRequest(inviteeRec, "bob", "https://bob.example.com", nil, nil)
	require.NoError(t, err)

	t.Run("test dispatch request to inviter context", func(t *testing.T) {
		reply, err := inviterCtx.Dispatch("", marshal(t, req))
		require.NoError(t, err)
		require.NotNil(t, reply.Response)
		require.Nil(t, reply.ProblemReport)
	})

	resp, _, report, err := inviterCtx.Inviter.HandleRequest(invRec, req)
	require.NoError(t, err)
	require.Nil(t, report)

	t.Run("test dispatch response to invitee context", func(t *testing.T) {
		reply, err := inviteeCtx.Dispatch("", marshal(t, resp))
		require.NoError(t, err)
		require.NotNil(t, reply.Ack)
	})

	t.Run("test unroutable type", func(t *testing.T) {
		_, err := inviterCtx.Dispatch("", []byte(`{"@type":"https://didcomm.org/unknown/1.0/thing"}`))
		require.ErrorIs(t, err, ErrUnroutableType)
	})

	_ = inviteeRec
}

func TestDispatch_MediationFamily(t *testing.T) {
	mediatorCtx, err := New(WithMediator("https://mediator.example.com", []string{"rk1"}))
	require.NoError(t, err)

	req := mediator.MediateRequest{ID: "r1", Type: mediator.MediateRequestMsgType}

	t.Run("test mediate request dispatches to grant", func(t *testing.T) {
		reply, err := mediatorCtx.Dispatch("client-vk", marshal(t, req))
		require.NoError(t, err)
		require.NotNil(t, reply.MediateGrant)
		require.Equal(t, "https://mediator.example.com", reply.MediateGrant.Endpoint)
	})

	t.Run("test keylist update dispatches through", func(t *testing.T) {
		upd := mediator.KeylistUpdate{
			ID:      "r2",
			Type:    mediator.KeylistUpdateMsgType,
			Updates: []mediator.KeylistUpdateItem{{RecipientKey: "rk9", Action: mediator.ActionAdd}},
		}

		reply, err := mediatorCtx.Dispatch("client-vk", marshal(t, upd))
		require.NoError(t, err)
		require.NotNil(t, reply.KeylistUpdate)
		require.Equal(t, mediator.ResultSuccess, reply.KeylistUpdate.Updated[0].Result)
	})

	t.Run("test keylist query dispatches through", func(t *testing.T) {
		q := mediator.KeylistQuery{ID: "r3", Type: mediator.KeylistQueryMsgType}

		reply, err := mediatorCtx.Dispatch("client-vk", marshal(t, q))
		require.NoError(t, err)
		require.NotNil(t, reply.Keylist)
		require.Contains(t, reply.Keylist.Keys, "rk9")
	})

	t.Run("test mediation dispatch fails when not configured as mediator", func(t *testing.T) {
		plainCtx, err := New()
		require.NoError(t, err)

		_, err = plainCtx.Dispatch("client-vk", marshal(t, req))
		require.Error(t, err)
	})

	t.Run("test forward dispatches to the registered client's mailbox", func(t *testing.T) {
		fwd := model.Forward{Type: model.ForwardMsgType, To: "rk9", Msg: marshal(t, "inner-envelope")}

		reply, err := mediatorCtx.Dispatch("", marshal(t, fwd))
		require.NoError(t, err)
		require.Nil(t, reply)

		require.Equal(t, 1, mediatorCtx.Mailbox.Status("client-vk", "rk9"))
	})

	t.Run("test forward dispatch fails when not configured as mediator", func(t *testing.T) {
		plainCtx, err := New()
		require.NoError(t, err)

		fwd := model.Forward{Type: model.ForwardMsgType, To: "rk9", Msg: marshal(t, "inner-envelope")}

		_, err = plainCtx.Dispatch("", marshal(t, fwd))
		require.Error(t, err)
	})
}

func TestDispatch_PickupFamily(t *testing.T) {
	ctx, err := New()
	require.NoError(t, err)

	require.NoError(t, ctx.Mailbox.Enqueue("acct1", "rk1", []byte("hello")))

	t.Run("test status request dispatches through", func(t *testing.T) {
		statusReq := struct {
			ID   string `json:"@id"`
			Type string `json:"@type"`
		}{"r1", "https://didcomm.org/messagepickup/2.0/status-request"}

		reply, err := ctx.Dispatch("acct1", marshal(t, statusReq))
		require.NoError(t, err)
		require.NotNil(t, reply.Status)
		require.Equal(t, 1, reply.Status.MessageCount)
	})

	t.Run("test delivery request dispatches through", func(t *testing.T) {
		deliveryReq := struct {
			ID   string `json:"@id"`
			Type string `json:"@type"`
		}{"r2", "https://didcomm.org/messagepickup/2.0/delivery-request"}

		reply, err := ctx.Dispatch("acct1", marshal(t, deliveryReq))
		require.NoError(t, err)
		require.NotNil(t, reply.Delivery)
		require.Len(t, reply.Delivery.Attachments, 1)
	})
}

func TestConnectionByThreadID_Unknown(t *testing.T) {
	ctx, err := New()
	require.NoError(t, err)

	ack := didexchange.Ack{ID: "a1", Type: didexchange.AckMsgType, Thread: nil}

	_, err = ctx.Dispatch("", marshal(t, ack))
	require.ErrorIs(t, err, ErrUnknownConnection)
}
