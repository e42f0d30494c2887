/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package transport provides a mock transport.Outbound for tests.
package transport

import "context"

// MockOutbound records every Send call and replays a scripted response or
// error.
type MockOutbound struct {
	SendErr  error
	Response []byte
	Sent     []Call
}

// Call captures one Send invocation.
type Call struct {
	Endpoint string
	Envelope []byte
}

// Send implements transport.Outbound.
func (m *MockOutbound) Send(_ context.Context, endpoint string, envelope []byte) ([]byte, error) {
	m.Sent = append(m.Sent, Call{Endpoint: endpoint, Envelope: envelope})

	if m.SendErr != nil {
		return nil, m.SendErr
	}

	return m.Response, nil
}
