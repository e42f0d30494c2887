/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mediator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type mockMailbox struct {
	enqueued []enqueueCall
	err      error
}

type enqueueCall struct {
	accountKey   string
	recipientKey string
	payload      []byte
}

func (m *mockMailbox) Enqueue(accountKey, recipientKey string, payload []byte) error {
	if m.err != nil {
		return m.err
	}

	m.enqueued = append(m.enqueued, enqueueCall{accountKey, recipientKey, payload})

	return nil
}

func TestCoordinator_HandleMediateRequest(t *testing.T) {
	c := NewCoordinator("https://mediator.example.com", []string{"rk1"}, &mockMailbox{})

	t.Run("test grants unconditionally", func(t *testing.T) {
		grant := c.HandleMediateRequest("client-vk", &MediateRequest{ID: "r1", Type: MediateRequestMsgType})
		require.Equal(t, "https://mediator.example.com", grant.Endpoint)
		require.Equal(t, []string{"rk1"}, grant.RoutingKeys)
	})

	t.Run("test repeat request reuses account", func(t *testing.T) {
		c.HandleMediateRequest("client-vk", &MediateRequest{ID: "r2"})
		require.Len(t, c.accounts, 1)
	})
}

func TestCoordinator_HandleKeylistUpdate(t *testing.T) {
	c := NewCoordinator("https://mediator.example.com", nil, &mockMailbox{})
	c.HandleMediateRequest("client-vk", &MediateRequest{})

	t.Run("test add is success then no_change on repeat", func(t *testing.T) {
		resp, err := c.HandleKeylistUpdate("client-vk", &KeylistUpdate{
			Updates: []KeylistUpdateItem{{RecipientKey: "rk1", Action: ActionAdd}},
		})
		require.NoError(t, err)
		require.Equal(t, ResultSuccess, resp.Updated[0].Result)

		resp, err = c.HandleKeylistUpdate("client-vk", &KeylistUpdate{
			Updates: []KeylistUpdateItem{{RecipientKey: "rk1", Action: ActionAdd}},
		})
		require.NoError(t, err)
		require.Equal(t, ResultNoChange, resp.Updated[0].Result)
	})

	t.Run("test remove unknown key is no_change", func(t *testing.T) {
		resp, err := c.HandleKeylistUpdate("client-vk", &KeylistUpdate{
			Updates: []KeylistUpdateItem{{RecipientKey: "never-added", Action: ActionRemove}},
		})
		require.NoError(t, err)
		require.Equal(t, ResultNoChange, resp.Updated[0].Result)
	})

	t.Run("test remove registered key succeeds", func(t *testing.T) {
		c.HandleKeylistUpdate("client-vk", &KeylistUpdate{ //nolint:errcheck
			Updates: []KeylistUpdateItem{{RecipientKey: "rk2", Action: ActionAdd}},
		})

		resp, err := c.HandleKeylistUpdate("client-vk", &KeylistUpdate{
			Updates: []KeylistUpdateItem{{RecipientKey: "rk2", Action: ActionRemove}},
		})
		require.NoError(t, err)
		require.Equal(t, ResultSuccess, resp.Updated[0].Result)
	})

	t.Run("test unknown action is client_error", func(t *testing.T) {
		resp, err := c.HandleKeylistUpdate("client-vk", &KeylistUpdate{
			Updates: []KeylistUpdateItem{{RecipientKey: "rk3", Action: "bogus"}},
		})
		require.NoError(t, err)
		require.Equal(t, ResultClientErr, resp.Updated[0].Result)
	})

	t.Run("test ungranted client rejected", func(t *testing.T) {
		_, err := c.HandleKeylistUpdate("never-granted", &KeylistUpdate{})
		require.ErrorIs(t, err, ErrNotGranted)
	})
}

func TestCoordinator_HandleKeylistQuery(t *testing.T) {
	c := NewCoordinator("https://mediator.example.com", nil, &mockMailbox{})
	c.HandleMediateRequest("client-vk", &MediateRequest{})
	c.HandleKeylistUpdate("client-vk", &KeylistUpdate{ //nolint:errcheck
		Updates: []KeylistUpdateItem{{RecipientKey: "rk1", Action: ActionAdd}},
	})

	list, err := c.HandleKeylistQuery("client-vk", &KeylistQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"rk1"}, list.Keys)

	_, err = c.HandleKeylistQuery("never-granted", &KeylistQuery{})
	require.ErrorIs(t, err, ErrNotGranted)
}

func TestCoordinator_RouteForward(t *testing.T) {
	mb := &mockMailbox{}
	c := NewCoordinator("https://mediator.example.com", nil, mb)
	c.HandleMediateRequest("client-vk", &MediateRequest{})
	c.HandleKeylistUpdate("client-vk", &KeylistUpdate{ //nolint:errcheck
		Updates: []KeylistUpdateItem{{RecipientKey: "rk1", Action: ActionAdd}},
	})

	t.Run("test route to registered key enqueues", func(t *testing.T) {
		err := c.RouteForward("rk1", []byte("payload"))
		require.NoError(t, err)
		require.Len(t, mb.enqueued, 1)
		require.Equal(t, "client-vk", mb.enqueued[0].accountKey)
	})

	t.Run("test route to unregistered key is silently dropped", func(t *testing.T) {
		mb.enqueued = nil

		err := c.RouteForward("unregistered", []byte("payload"))
		require.NoError(t, err)
		require.Empty(t, mb.enqueued)
	})

	t.Run("test route falls back to keylist scan when index entry evicted", func(t *testing.T) {
		c.keyIndex.Remove("rk1")
		mb.enqueued = nil

		err := c.RouteForward("rk1", []byte("payload"))
		require.NoError(t, err)
		require.Len(t, mb.enqueued, 1)
		require.Equal(t, "client-vk", mb.enqueued[0].accountKey)

		v, cacheErr := c.keyIndex.Get("rk1")
		require.NoError(t, cacheErr)
		require.Equal(t, "client-vk", v)
	})

	t.Run("test removed key stops routing", func(t *testing.T) {
		c.HandleKeylistUpdate("client-vk", &KeylistUpdate{ //nolint:errcheck
			Updates: []KeylistUpdateItem{{RecipientKey: "rk1", Action: ActionRemove}},
		})

		mb.enqueued = nil

		err := c.RouteForward("rk1", []byte("payload"))
		require.NoError(t, err)
		require.Empty(t, mb.enqueued)
	})
}

func TestAccount_Keys(t *testing.T) {
	a := NewAccount("auth-vk", "my-vk")

	require.True(t, a.add("k1"))
	require.False(t, a.add("k1"))
	require.ElementsMatch(t, []string{"k1"}, a.Keys())

	require.True(t, a.remove("k1"))
	require.False(t, a.remove("k1"))
	require.Empty(t, a.Keys())
}
