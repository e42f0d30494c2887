/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didexchange

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aries-community/didcomm-core/pkg/didcomm/common/model"
	"github.com/aries-community/didcomm-core/pkg/didcomm/protocol/problemreport"
	"github.com/aries-community/didcomm-core/pkg/vdr"
)

// Invitee drives the invitee half-protocol.
type Invitee struct {
	wallet   walletCollaborator
	store    *Store
	registry vdr.Registry // resolves a public/OOB invitation's DID, may be nil for pairwise-only use
}

// NewInvitee builds an Invitee backed by wallet, store, and an optional
// ledger registry (needed only to accept public/OOB invitations).
func NewInvitee(wallet walletCollaborator, store *Store, registry vdr.Registry) *Invitee {
	return &Invitee{wallet: wallet, store: store, registry: registry}
}

// AcceptInvitation performs Initial → Invited: it resolves the invitation
// to a remote service block.
func (in *Invitee) AcceptInvitation(inv *Invitation) (*Record, error) {
	var (
		recipientKeys, routingKeys []string
		endpoint                   string
	)

	switch {
	case inv.DID != "":
		if in.registry == nil {
			return nil, errors.New("didexchange: public invitation requires a vdr.Registry")
		}

		svc, err := in.registry.ResolveService(inv.DID)
		if err != nil {
			return nil, errors.Wrap(err, "didexchange: resolve invitation did")
		}

		recipientKeys, routingKeys, endpoint = svc.RecipientKeys, svc.RoutingKeys, svc.Endpoint
	case len(inv.Services) > 0:
		svc, ok := inv.firstDIDCommService()
		if !ok {
			return nil, errors.New("didexchange: no did-communication service in invitation")
		}

		recipientKeys, routingKeys, endpoint = svc.RecipientKeys, svc.RoutingKeys, svc.ServiceEndpoint
	default:
		recipientKeys, routingKeys, endpoint = inv.RecipientKeys, inv.RoutingKeys, inv.ServiceEndpoint
	}

	if len(recipientKeys) == 0 || endpoint == "" {
		return nil, errors.Wrap(ErrInvalidDidDoc, "invitation resolves to no recipient keys or endpoint")
	}

	rec := &Record{
		ConnectionID:     uuid.NewString(),
		ThreadID:         inv.ID,
		Role:             RoleInvitee,
		State:            StateInvited,
		Invitation:       inv,
		InvitationVerkey: recipientKeys[0],
		TheirDID:         inv.DID,
		TheirDIDDoc: &DocAttached{
			ID:              inv.DID,
			RecipientKeys:   recipientKeys,
			RoutingKeys:     routingKeys,
			ServiceEndpoint: endpoint,
		},
	}

	in.store.Put(rec)

	return rec, nil
}

// PrepareRequest performs Invited → Requested: it generates a fresh
// pairwise (DID, verkey), builds a local DID-doc, and chooses thread
// decoration (pairwise invitations reuse the invitation id as thread-id;
// public/OOB invitations mint a new request id as thread-id and carry the
// invitation id as parent thread-id).
func (in *Invitee) PrepareRequest(rec *Record, label, endpoint string, routingKeys []string, seed []byte) (*Request, *Record, error) {
	if rec.State != StateInvited {
		return nil, nil, ErrNotReady
	}

	myDID, myVK, err := in.wallet.CreateAndStoreMyDID(seed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "didexchange: create request did")
	}

	reqID := uuid.NewString()

	var thread *model.Thread

	if rec.Invitation.IsPublic() {
		thread = &model.Thread{ID: reqID, PID: rec.Invitation.ID}
	} else {
		reqID = rec.Invitation.ID
	}

	req := &Request{
		ID:     reqID,
		Type:   RequestMsgType,
		Label:  label,
		Thread: thread,
		Connection: Connection{
			DID: myDID,
			DIDDoc: &DocAttached{
				ID:              myDID,
				RecipientKeys:   []string{myVK},
				RoutingKeys:     routingKeys,
				ServiceEndpoint: endpoint,
			},
		},
	}

	updated := *rec
	updated.State = StateRequested
	updated.MyDID = myDID
	updated.MyVerkey = myVK
	updated.ThreadID = reqID

	if thread != nil {
		updated.ParentThreadID = thread.PID
	}

	in.store.Put(&updated)

	return req, &updated, nil
}

// HandleResponse performs Requested → Completed (or → Failed on a bad
// signature): it verifies thread-id, then the connection~sig block against
// the cached invitation verkey.
func (in *Invitee) HandleResponse(rec *Record, resp *Response) (*Ack, *Record, *problemreport.Report, error) {
	if rec.State == StateCompleted {
		return nil, rec, nil, nil // idempotent re-receipt
	}

	if rec.State != StateRequested {
		return nil, nil, nil, ErrNotReady
	}

	if resp.Thread == nil || resp.Thread.ID != rec.ThreadID {
		return nil, rec, problemreport.New(problemreport.FamilyConnections, rec.ThreadID,
			problemreport.CodeThreadMismatch, "response thread-id does not match connection"), nil
	}

	conn, err := verifyConnectionSignature(resp.ConnectionSignature, rec.InvitationVerkey, in.wallet.Verify)
	if err != nil {
		failed := *rec
		failed.State = StateFailed
		in.store.Put(&failed)

		return nil, &failed, problemreport.New(problemreport.FamilyConnections, rec.ThreadID,
			problemreport.CodeInvalidSignature, err.Error()), nil
	}

	if err := validateEmbeddedDoc(conn); err != nil {
		failed := *rec
		failed.State = StateFailed
		in.store.Put(&failed)

		return nil, &failed, problemreport.New(problemreport.FamilyConnections, rec.ThreadID,
			problemreport.CodeInvalidDIDDoc, err.Error()), nil
	}

	completed := *rec
	completed.State = StateCompleted
	completed.TheirDID = conn.DID
	completed.TheirDIDDoc = conn.DIDDoc
	in.store.Put(&completed)

	ack := &Ack{
		ID:     uuid.NewString(),
		Type:   AckMsgType,
		Status: ackStatusOK,
		Thread: &model.Thread{ID: rec.ThreadID},
	}

	return ack, &completed, nil, nil
}
