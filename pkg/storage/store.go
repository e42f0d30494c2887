/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package storage defines the narrow persistence interface this core needs.
// The message-pickup mailbox persists its payloads through it; connection
// records and mediator accounts are held in memory by their own packages.
// Wallet key storage
// internals are an explicit external collaborator and are not modeled
// here; this is a minimal key-value contract, not a full spi/storage
// surface with EDV-backed encrypted storage, which is out of scope for
// this core.
package storage

import "errors"

// ErrDataNotFound is returned by Get when key is absent.
var ErrDataNotFound = errors.New("storage: data not found")

// Store is a minimal per-collection key-value store.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	// Iterate calls fn for every (key, value) pair with the given prefix,
	// in implementation-defined order, stopping early if fn returns false.
	Iterate(prefix string, fn func(key string, value []byte) bool) error
}

// Provider opens/creates named Stores.
type Provider interface {
	OpenStore(name string) (Store, error)
}
