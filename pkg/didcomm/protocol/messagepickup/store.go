/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package messagepickup

import (
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/pkg/storage"
)

// DefaultDeliveryLimit is the back-pressure ceiling: a client-requested
// limit larger than this is silently clamped.
const DefaultDeliveryLimit = 100

type mailboxEntry struct {
	id           string
	recipientKey string
	arrival      int64
}

// accountMailbox is one account's FIFO queue. Every read/write holds mu,
// which is what makes the account a serialized, single-writer resource.
type accountMailbox struct {
	mu      sync.Mutex
	order   []string // entry ids, oldest first
	entries map[string]*mailboxEntry
}

// Store is the per-recipient mailbox: FIFO ordering per account, idempotent
// deletion, at-least-once delivery. Raw envelope bytes are persisted
// through a storage.Store (an in-memory provider by default), while queue
// ordering lives in memory — the externally visible guarantee is
// FIFO-per-account, not the on-disk layout.
type Store struct {
	backing storage.Store
	clock   func() int64

	mu       sync.Mutex
	accounts map[string]*accountMailbox
}

// NewStore builds a Store persisting payload bytes via backing.
func NewStore(backing storage.Store) *Store {
	return &Store{
		backing:  backing,
		clock:    func() int64 { return time.Now().Unix() },
		accounts: make(map[string]*accountMailbox),
	}
}

func (s *Store) account(accountKey string) *accountMailbox {
	s.mu.Lock()
	defer s.mu.Unlock()

	am, ok := s.accounts[accountKey]
	if !ok {
		am = &accountMailbox{entries: make(map[string]*mailboxEntry)}
		s.accounts[accountKey] = am
	}

	return am
}

// Enqueue implements mediator.Mailbox: it appends payload to accountKey's
// queue under recipientKey, assigning a random UUID as its id. The ids are
// not ordered; arrival order is kept by the queue itself.
func (s *Store) Enqueue(accountKey, recipientKey string, payload []byte) error {
	id := uuid.NewString()

	if err := s.backing.Put(entryStorageKey(accountKey, id), payload); err != nil {
		return errors.Wrap(err, "messagepickup: persist entry")
	}

	am := s.account(accountKey)

	am.mu.Lock()
	defer am.mu.Unlock()

	am.entries[id] = &mailboxEntry{id: id, recipientKey: recipientKey, arrival: s.clock()}
	am.order = append(am.order, id)

	return nil
}

func entryStorageKey(accountKey, id string) string {
	return "mailbox/" + accountKey + "/" + id
}

// Status counts undelivered entries for accountKey, optionally filtered to
// one recipientKey.
func (s *Store) Status(accountKey, recipientKey string) int {
	am := s.account(accountKey)

	am.mu.Lock()
	defer am.mu.Unlock()

	count := 0

	for _, id := range am.order {
		e := am.entries[id]
		if recipientKey != "" && e.recipientKey != recipientKey {
			continue
		}

		count++
	}

	return count
}

// Deliver returns up to limit (clamped to DefaultDeliveryLimit) undelivered
// entries, oldest first, optionally filtered to one recipientKey.
func (s *Store) Deliver(accountKey, recipientKey string, limit int) ([]Attachment, error) {
	if limit <= 0 || limit > DefaultDeliveryLimit {
		limit = DefaultDeliveryLimit
	}

	am := s.account(accountKey)

	am.mu.Lock()
	var ids []string

	for _, id := range am.order {
		e := am.entries[id]
		if recipientKey != "" && e.recipientKey != recipientKey {
			continue
		}

		ids = append(ids, id)

		if len(ids) == limit {
			break
		}
	}
	am.mu.Unlock()

	out := make([]Attachment, 0, len(ids))

	for _, id := range ids {
		payload, err := s.backing.Get(entryStorageKey(accountKey, id))
		if err != nil {
			return nil, errors.Wrap(err, "messagepickup: load entry")
		}

		out = append(out, Attachment{ID: id, Data: base64.URLEncoding.EncodeToString(payload)})
	}

	return out, nil
}

// Ack removes the listed entry ids; removal is the only delivered-state
// transition this Store has (an entry present in the queue is by
// definition still undelivered, re-delivered on every Deliver call until
// acknowledged). Acknowledging an unknown or already-deleted id is not an
// error.
func (s *Store) Ack(accountKey string, ids []string) error {
	am := s.account(accountKey)

	am.mu.Lock()
	defer am.mu.Unlock()

	toDelete := make(map[string]bool, len(ids))
	for _, id := range ids {
		toDelete[id] = true
	}

	kept := am.order[:0]

	for _, id := range am.order {
		if !toDelete[id] {
			kept = append(kept, id)
			continue
		}

		delete(am.entries, id)

		if err := s.backing.Delete(entryStorageKey(accountKey, id)); err != nil {
			return errors.Wrap(err, "messagepickup: delete entry")
		}
	}

	am.order = kept

	return nil
}
