/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package mediator

import "sync"

// Account is a mediator's per-client record.
type Account struct {
	// AuthVerkey is the client's pairwise verkey used to reach this
	// mediator (the sender verkey the mediator authenticates inbound
	// protocol messages against).
	AuthVerkey string
	// MyVerkey is the mediator's own pairwise verkey for this client.
	MyVerkey string

	mu      sync.Mutex
	keylist map[string]struct{} // set of registered recipient keys
}

// NewAccount constructs an Account with an empty keylist.
func NewAccount(authVerkey, myVerkey string) *Account {
	return &Account{
		AuthVerkey: authVerkey,
		MyVerkey:   myVerkey,
		keylist:    make(map[string]struct{}),
	}
}

// Keys returns a snapshot of the account's registered recipient keys.
func (a *Account) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.keylist))
	for k := range a.keylist {
		out = append(out, k)
	}

	return out
}

// add registers key, returning whether it was newly added.
func (a *Account) add(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.keylist[key]; ok {
		return false
	}

	a.keylist[key] = struct{}{}

	return true
}

// remove unregisters key, returning whether it was present.
func (a *Account) remove(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.keylist[key]; !ok {
		return false
	}

	delete(a.keylist, key)

	return true
}
