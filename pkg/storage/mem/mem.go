/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mem is an in-memory storage.Provider, the default backing store
// used by agentctx.New and by tests. Production deployments supply their own
// storage.Provider.
package mem

import (
	"strings"
	"sync"

	"github.com/aries-community/didcomm-core/pkg/storage"
)

// Provider opens in-memory Stores, one map per name.
type Provider struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewProvider constructs an empty in-memory Provider.
func NewProvider() *Provider {
	return &Provider{stores: make(map[string]*Store)}
}

// OpenStore returns the named Store, creating it on first use.
func (p *Provider) OpenStore(name string) (storage.Store, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stores[name]
	if !ok {
		s = &Store{data: make(map[string][]byte)}
		p.stores[name] = s
	}

	return s, nil
}

// Store is a mutex-guarded map-backed storage.Store.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Put stores value under key, overwriting any prior value.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), value...)

	return nil
}

// Get returns the value for key or storage.ErrDataNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrDataNotFound
	}

	return append([]byte(nil), v...), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Iterate walks every key with the given prefix in lexical order.
func (s *Store) Iterate(prefix string, fn func(key string, value []byte) bool) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))

	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()

	sortStrings(keys)

	for _, k := range keys {
		s.mu.RLock()
		v, ok := s.data[k]
		s.mu.RUnlock()

		if !ok {
			continue
		}

		if !fn(k, v) {
			break
		}
	}

	return nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
