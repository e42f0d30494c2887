/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr provides a mock vdr.Registry for tests.
package vdr

import (
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/pkg/vdr"
)

// MockRegistry resolves whatever Services map entry matches the requested
// DID, or ResolveErr if set.
type MockRegistry struct {
	Services   map[string]*vdr.Service
	ResolveErr error
}

// ResolveService implements vdr.Registry.
func (m *MockRegistry) ResolveService(did string) (*vdr.Service, error) {
	if m.ResolveErr != nil {
		return nil, m.ResolveErr
	}

	svc, ok := m.Services[did]
	if !ok {
		return nil, errors.Errorf("mock vdr: no service for %s", did)
	}

	return svc, nil
}
