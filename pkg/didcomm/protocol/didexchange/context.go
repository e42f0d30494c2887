/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didexchange

import "time"

// walletCollaborator is the narrow, non-owning view this protocol needs
// from a wallet: it never holds a Connection back-reference, keeping the
// dependency one-directional (connections → wallet, never the reverse).
type walletCollaborator interface {
	CreateAndStoreMyDID(seed []byte) (did string, verkey string, err error)
	Sign(verkey string, bytes []byte) ([]byte, error)
	Verify(verkeyB58 string, bytes, sig []byte) bool
}

// Clock supplies monotonic seconds for signed-response timestamps.
type Clock interface {
	NowUnix() int64
}

// SystemClock is the default Clock, backed by wall-clock time.
type SystemClock struct{}

// NowUnix returns time.Now().Unix().
func (SystemClock) NowUnix() int64 { return time.Now().Unix() }
