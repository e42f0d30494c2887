/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package transport is the narrow send/receive collaborator interface this
// core depends on: HTTP framing, retries, and connection pooling are an
// external collaborator's concern; this core only needs Send with a
// mandatory timeout and a cancellable context.
package transport

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/internal/log"
)

var logger = log.New("transport")

// DefaultTimeout is the suggested per-operation timeout applied when a
// caller does not specify one.
const DefaultTimeout = 30 * time.Second

// ErrTransport is surfaced after retries are exhausted.
var ErrTransport = errors.New("transport: send failed")

// Outbound sends an opaque packed envelope to endpoint. The response (if
// any; many Aries exchanges carry no inline reply) is returned as-is for
// the caller to unpack.
type Outbound interface {
	Send(ctx context.Context, endpoint string, envelope []byte) ([]byte, error)
}

// RetryingOutbound wraps an Outbound with exponential backoff, retrying
// transient send failures up to maxRetries times before surfacing
// ErrTransport.
type RetryingOutbound struct {
	next       Outbound
	maxRetries uint64
	timeout    time.Duration
}

// NewRetryingOutbound wraps next with backoff.v4 retry semantics.
func NewRetryingOutbound(next Outbound, maxRetries uint64, timeout time.Duration) *RetryingOutbound {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &RetryingOutbound{next: next, maxRetries: maxRetries, timeout: timeout}
}

// Send retries next.Send with exponential backoff; the context is bounded
// by r.timeout and is honored for cancellation at every attempt.
func (r *RetryingOutbound) Send(ctx context.Context, endpoint string, envelope []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var resp []byte

	op := func() error {
		var err error

		resp, err = r.next.Send(ctx, endpoint, envelope)
		if err != nil {
			logger.Debugf("send to %s failed, will retry: %v", endpoint, err)
		}

		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		return nil, errors.Wrap(ErrTransport, err.Error())
	}

	return resp, nil
}
