/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mediator

import (
	"sync"
	"time"

	"github.com/bluele/gcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/internal/log"
)

var logger = log.New("didcomm/mediator")

// ErrNotGranted is returned when an operation requires a granted Account
// that does not exist.
var ErrNotGranted = errors.New("mediator: client has no granted account")

// Mailbox is the narrow store-and-forward collaborator a Coordinator
// enqueues inbound Forward payloads into; pkg/didcomm/protocol/
// messagepickup.Store implements it.
type Mailbox interface {
	Enqueue(accountKey, recipientKey string, payload []byte) error
}

// Coordinator is a mediator's registration and keylist authority. One
// Coordinator instance serves every client account it grants.
type Coordinator struct {
	endpoint    string
	routingKeys []string
	mailbox     Mailbox

	mu       sync.RWMutex
	accounts map[string]*Account // keyed by client auth verkey

	// keyIndex maps a registered recipient key to its owning account's
	// auth verkey, giving inbound Forward routing O(1) lookup instead of
	// a linear scan over every account's keylist.
	keyIndex gcache.Cache
}

// NewCoordinator builds a Coordinator that will grant clients endpoint and
// routingKeys, storing inbound forwards via mailbox.
func NewCoordinator(endpoint string, routingKeys []string, mailbox Mailbox) *Coordinator {
	return &Coordinator{
		endpoint:    endpoint,
		routingKeys: routingKeys,
		mailbox:     mailbox,
		accounts:    make(map[string]*Account),
		keyIndex:    gcache.New(4096).LRU().Expiration(24 * time.Hour).Build(),
	}
}

// HandleMediateRequest grants every requester unconditionally: policy
// decisions (allow-lists, rate limits) belong to a collaborator outside
// this core's scope.
func (c *Coordinator) HandleMediateRequest(clientAuthVerkey string, req *MediateRequest) *MediateGrant {
	c.mu.Lock()
	if _, ok := c.accounts[clientAuthVerkey]; !ok {
		c.accounts[clientAuthVerkey] = NewAccount(clientAuthVerkey, clientAuthVerkey)
	}
	c.mu.Unlock()

	logger.Infof("mediator: granted routing to %s", clientAuthVerkey)

	return &MediateGrant{
		ID:          uuid.NewString(),
		Type:        MediateGrantMsgType,
		Endpoint:    c.endpoint,
		RoutingKeys: c.routingKeys,
	}
}

func (c *Coordinator) account(clientAuthVerkey string) (*Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	acc, ok := c.accounts[clientAuthVerkey]

	return acc, ok
}

// HandleKeylistUpdate rejects the whole batch with ErrNotGranted when the
// client has no granted account. Otherwise it applies the items in order,
// each one separately under the account's lock, and reports idempotent
// per-item results. The batch is not all-or-nothing: an item with an
// unknown action is reported client_error while the other items are still
// applied, and concurrent updates to the same account may interleave.
func (c *Coordinator) HandleKeylistUpdate(clientAuthVerkey string, upd *KeylistUpdate) (*KeylistUpdateResponse, error) {
	acc, ok := c.account(clientAuthVerkey)
	if !ok {
		return nil, ErrNotGranted
	}

	results := make([]KeylistUpdateResponseItem, len(upd.Updates))

	for i, item := range upd.Updates {
		var changed bool

		switch item.Action {
		case ActionAdd:
			changed = acc.add(item.RecipientKey)
		case ActionRemove:
			changed = acc.remove(item.RecipientKey)
		default:
			results[i] = KeylistUpdateResponseItem{RecipientKey: item.RecipientKey, Action: item.Action, Result: ResultClientErr}
			continue
		}

		result := ResultNoChange
		if changed {
			result = ResultSuccess

			if item.Action == ActionAdd {
				c.keyIndex.Set(item.RecipientKey, clientAuthVerkey) //nolint:errcheck
			} else {
				c.keyIndex.Remove(item.RecipientKey)
			}
		}

		results[i] = KeylistUpdateResponseItem{RecipientKey: item.RecipientKey, Action: item.Action, Result: result}
	}

	return &KeylistUpdateResponse{ID: uuid.NewString(), Type: KeylistUpdateResponseMsgType, Updated: results}, nil
}

// HandleKeylistQuery lists an account's currently registered recipient
// keys.
func (c *Coordinator) HandleKeylistQuery(clientAuthVerkey string, _ *KeylistQuery) (*Keylist, error) {
	acc, ok := c.account(clientAuthVerkey)
	if !ok {
		return nil, ErrNotGranted
	}

	return &Keylist{ID: uuid.NewString(), Type: KeylistMsgType, Keys: acc.Keys()}, nil
}

// RouteForward implements inbound routing: given an
// already-unpacked Forward's To/Msg, it resolves the owning account via
// the recipient-key index and enqueues the inner bytes to that account's
// mailbox. The index is a cache, not the source of truth: on a miss it
// falls back to scanning the registered accounts' keylists (the
// authoritative, durable record) and repopulates the index on a hit.
// Only a key genuinely absent from every account's keylist is dropped.
func (c *Coordinator) RouteForward(to string, payload []byte) error {
	if v, err := c.keyIndex.Get(to); err == nil {
		return c.mailbox.Enqueue(v.(string), to, payload)
	}

	accountKey, ok := c.findAccountByKey(to)
	if !ok {
		logger.Debugf("mediator: forward to unregistered key %s dropped", to)
		return nil
	}

	c.keyIndex.Set(to, accountKey) //nolint:errcheck

	return c.mailbox.Enqueue(accountKey, to, payload)
}

// findAccountByKey scans every granted account's keylist for to, the
// fallback path when the recipient-key index has evicted or never cached
// the mapping.
func (c *Coordinator) findAccountByKey(to string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for authVerkey, acc := range c.accounts {
		for _, key := range acc.Keys() {
			if key == to {
				return authVerkey, true
			}
		}
	}

	return "", false
}
