/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didexchange

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/internal/log"
	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/problemreport"
)

var logger = log.New("didcomm/didexchange")

// ErrNotReady is returned when an operation is attempted from a state that
// does not permit it.
var ErrNotReady = errors.New("didexchange: connection not ready for this operation")

// Inviter drives the inviter half-protocol.
type Inviter struct {
	wallet walletCollaborator
	store  *Store
	clock  Clock
}

// NewInviter builds an Inviter backed by wallet and store.
func NewInviter(wallet walletCollaborator, store *Store, clock Clock) *Inviter {
	if clock == nil {
		clock = SystemClock{}
	}

	return &Inviter{wallet: wallet, store: store, clock: clock}
}

// CreateInvitation performs Initial → Invited: it mints a fresh pairwise
// (DID, verkey), and returns an Invitation whose @id is the connection's
// thread-id.
func (iv *Inviter) CreateInvitation(label string, routingKeys []string, endpoint string, seed []byte) (*Invitation, *Record, error) {
	myDID, myVK, err := iv.wallet.CreateAndStoreMyDID(seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "didexchange: create invitation did")
	}

	invID := uuid.NewString()

	inv := &Invitation{
		ID:              invID,
		Type:            InvitationMsgType,
		Label:           label,
		RecipientKeys:   []string{myVK},
		RoutingKeys:     routingKeys,
		ServiceEndpoint: endpoint,
	}

	rec := &Record{
		ConnectionID:     uuid.NewString(),
		ThreadID:         invID,
		Role:             RoleInviter,
		State:            StateInvited,
		MyDID:            myDID,
		MyVerkey:         myVK,
		Invitation:       inv,
		InvitationVerkey: myVK,
	}

	iv.store.Put(rec)

	return inv, rec, nil
}

// HandleRequest performs Invited → Responded: it verifies thread discipline
// and the embedded DID-doc, forks a new Record for this particular
// requester, rotates to a fresh responder DID, and builds the signed
// Response. The forked Record is stored directly in Responded; there is no
// separate send step between Requested and Responded, and the Response is
// returned unpacked and unsent.
//
// invRec is the Invited-state Record created by CreateInvitation; on
// success a *new*, independent Record is returned (and stored) rather than
// mutating invRec, so a single invitation may be accepted by many
// invitees concurrently.
func (iv *Inviter) HandleRequest(invRec *Record, req *Request) (*Response, *Record, *problemreport.Report, error) {
	if invRec.State != StateInvited {
		return nil, nil, nil, ErrNotReady
	}

	inv := invRec.Invitation

	expectedParent := inv.ID

	if inv.IsPublic() {
		if req.Thread == nil || req.Thread.PID != expectedParent {
			return nil, nil, problemreport.New(problemreport.FamilyConnections, req.ID,
				problemreport.CodeThreadMismatch, "request parent thread-id does not match invitation id"), nil
		}
	} else {
		thid := req.ID
		if req.Thread != nil && req.Thread.ID != "" {
			thid = req.Thread.ID
		}

		if thid != expectedParent {
			return nil, nil, problemreport.New(problemreport.FamilyConnections, req.ID,
				problemreport.CodeThreadMismatch, "request thread-id does not match invitation id"), nil
		}
	}

	if err := validateEmbeddedDoc(&req.Connection); err != nil {
		return nil, nil, problemreport.New(problemreport.FamilyConnections, req.ID,
			problemreport.CodeInvalidDIDDoc, err.Error()), nil
	}

	responderDID, responderVK, err := iv.wallet.CreateAndStoreMyDID(nil)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "didexchange: rotate responder did")
	}

	forked := &Record{
		ConnectionID:     uuid.NewString(),
		ThreadID:         req.ID,
		ParentThreadID:   invRec.ThreadID,
		Role:             RoleInviter,
		State:            StateRequested,
		MyDID:            responderDID,
		MyVerkey:         responderVK,
		TheirDID:         req.Connection.DID,
		TheirDIDDoc:      req.Connection.DIDDoc,
		Invitation:       inv,
		InvitationVerkey: invRec.InvitationVerkey,
	}

	conn := &Connection{
		DID: responderDID,
		DIDDoc: &DocAttached{
			ID:              responderDID,
			RecipientKeys:   []string{responderVK},
			RoutingKeys:     inv.RoutingKeys,
			ServiceEndpoint: inv.ServiceEndpoint,
		},
	}

	sig, err := buildConnectionSignature(conn, invRec.InvitationVerkey, iv.clock.NowUnix(), iv.wallet.Sign)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "didexchange: sign response")
	}

	var pthid string
	if req.Thread != nil {
		pthid = req.Thread.PID
	}

	resp := &Response{
		ID:                  uuid.NewString(),
		Type:                ResponseMsgType,
		Thread:              &model.Thread{ID: req.ID, PID: pthid},
		ConnectionSignature: sig,
	}

	forked.State = StateResponded
	iv.store.Put(forked)

	logger.Infof("inviter: connection %s moved to Responded", forked.ConnectionID)

	return resp, forked, nil, nil
}

// HandleAck performs Responded → Completed: it checks thread discipline
// and freezes the Record.
func (iv *Inviter) HandleAck(rec *Record, ack *Ack) (*Record, *problemreport.Report, error) {
	if rec.State == StateCompleted {
		return rec, nil, nil // idempotent re-receipt
	}

	if rec.State != StateResponded {
		return nil, nil, ErrNotReady
	}

	if ack.Thread == nil || ack.Thread.ID != rec.ThreadID {
		return rec, problemreport.New(problemreport.FamilyConnections, rec.ThreadID,
			problemreport.CodeThreadMismatch, "ack thread-id does not match connection"), nil
	}

	completed := *rec
	completed.State = StateCompleted
	iv.store.Put(&completed)

	return &completed, nil, nil
}
