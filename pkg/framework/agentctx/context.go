/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package agentctx assembles one agent's collaborators — wallet, packager,
// ledger registry, outbound transport, and protocol state machines — behind
// a single explicit Context, threaded through calls instead of resolved from
// package-level globals.
package agentctx

import (
	"github.com/aries-community/didcomm-core/internal/log"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packager"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer/legacy/anoncrypt"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer/legacy/authcrypt"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/didexchange"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/mediator"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/messagepickup"
	"github.com/aries-community/didcomm-core/pkg/storage"
	"github.com/aries-community/didcomm-core/pkg/storage/mem"
	"github.com/aries-community/didcomm-core/pkg/transport"
	"github.com/aries-community/didcomm-core/pkg/vdr"
	"github.com/aries-community/didcomm-core/pkg/wallet"
)

var logger = log.New("framework/agentctx")

const mailboxStoreName = "mailbox"

// Context is everything one agent instance needs, constructed once at
// startup and passed explicitly to every protocol client a caller drives.
// It owns no reference to any other agent's Context.
type Context struct {
	Wallet *wallet.Wallet

	VDR      vdr.Registry
	Outbound transport.Outbound

	Connections *didexchange.Store
	Inviter     *didexchange.Inviter
	Invitee     *didexchange.Invitee

	Mailbox  *messagepickup.Store
	Pickup   *messagepickup.Handler
	Mediator *mediator.Coordinator

	provider storage.Provider

	mediatorEndpoint    string
	mediatorRoutingKeys []string
	clock               didexchange.Clock
}

// Option configures a Context under construction.
type Option func(*Context)

// WithVDR supplies the ledger/DID-resolution collaborator.
// Without one, public/OOB invitations cannot be accepted.
func WithVDR(r vdr.Registry) Option {
	return func(c *Context) { c.VDR = r }
}

// WithOutbound supplies the transport collaborator a caller can use to send
// packed envelopes. The Context only stores it: Dispatch and the protocol
// collaborators never send anything themselves.
func WithOutbound(o transport.Outbound) Option {
	return func(c *Context) { c.Outbound = o }
}

// WithStorageProvider overrides the storage.Provider the mailbox opens its
// store from (an in-memory mem.Provider is used if this option is absent).
func WithStorageProvider(p storage.Provider) Option {
	return func(c *Context) { c.provider = p }
}

// WithMediator configures this agent as a mediator, publishing endpoint and
// routingKeys in every MediateGrant it issues.
func WithMediator(endpoint string, routingKeys []string) Option {
	return func(c *Context) { c.mediatorEndpoint, c.mediatorRoutingKeys = endpoint, routingKeys }
}

// WithClock overrides the clock the Inviter timestamps signed responses
// with (tests substitute a fixed clock; production defaults to wall time).
func WithClock(clock didexchange.Clock) Option {
	return func(c *Context) { c.clock = clock }
}

// New builds a fully-wired Context: a fresh Wallet, its authcrypt/anoncrypt
// packers and packager, connection and mailbox stores, and the inviter,
// invitee, and pickup collaborators. A mediator Coordinator is added only
// if WithMediator was given.
func New(opts ...Option) (*Context, error) {
	c := &Context{provider: mem.NewProvider()}

	for _, opt := range opts {
		opt(c)
	}

	w := wallet.New()
	authPacker := authcrypt.New(w)
	anonPacker := anoncrypt.New(w)
	w.SetPackager(packager.New(authPacker, anonPacker))

	c.Wallet = w
	c.Connections = didexchange.NewStore()
	c.Inviter = didexchange.NewInviter(w, c.Connections, c.clock)
	c.Invitee = didexchange.NewInvitee(w, c.Connections, c.VDR)

	mailboxBacking, err := c.provider.OpenStore(mailboxStoreName)
	if err != nil {
		return nil, err
	}

	c.Mailbox = messagepickup.NewStore(mailboxBacking)
	c.Pickup = messagepickup.NewHandler(c.Mailbox)

	if c.mediatorEndpoint != "" {
		c.Mediator = mediator.NewCoordinator(c.mediatorEndpoint, c.mediatorRoutingKeys, c.Mailbox)
	}

	logger.Infof("agent context ready")

	return c, nil
}
