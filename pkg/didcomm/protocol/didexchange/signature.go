/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didexchange

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrInvalidSignature covers both a cryptographic verification failure and
// a signer mismatch.
var ErrInvalidSignature = errors.New("didexchange: invalid connection signature")

const (
	signatureType = "https://didcomm.org/signature/1.0/ed25519Sha512_single"
	timestampLen  = 8
)

// ConnectionSignature is the connection~sig attachment.
type ConnectionSignature struct {
	Type       string `json:"@type"`
	SignedData string `json:"sig_data"`
	Signer     string `json:"signer"`
	Signature  string `json:"signature"`
}

// signFunc signs bytes with the key identified by verkey (typically
// wallet.Sign).
type signFunc func(verkey string, bytes []byte) ([]byte, error)

// verifyFunc checks a signature against a base58 verkey (typically
// wallet.Verify).
type verifyFunc func(verkeyB58 string, bytes, sig []byte) bool

// buildConnectionSignature signs conn with signerVerkey, covering
// sig_data = big_endian_u64(now) || utf8(json(conn)).
func buildConnectionSignature(conn *Connection, signerVerkey string, now int64, sign signFunc) (*ConnectionSignature, error) {
	payload, err := json.Marshal(conn)
	if err != nil {
		return nil, errors.Wrap(err, "didexchange: marshal connection payload")
	}

	ts := make([]byte, timestampLen)
	binary.BigEndian.PutUint64(ts, uint64(now))

	sigData := append(ts, payload...)

	sig, err := sign(signerVerkey, sigData)
	if err != nil {
		return nil, errors.Wrap(err, "didexchange: sign connection attachment")
	}

	return &ConnectionSignature{
		Type:       signatureType,
		SignedData: base64.URLEncoding.EncodeToString(sigData),
		Signer:     signerVerkey,
		Signature:  base64.URLEncoding.EncodeToString(sig),
	}, nil
}

// verifyConnectionSignature checks cs cryptographically under its claimed
// signer, then asserts the signer matches expectedSigner (the invitation
// verkey) before decoding the enclosed Connection.
func verifyConnectionSignature(cs *ConnectionSignature, expectedSigner string, verify verifyFunc) (*Connection, error) {
	if cs == nil {
		return nil, errors.Wrap(ErrInvalidSignature, "missing connection~sig")
	}

	sigData, err := base64.URLEncoding.DecodeString(cs.SignedData)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, "decode sig_data")
	}

	sig, err := base64.URLEncoding.DecodeString(cs.Signature)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, "decode signature")
	}

	if !verify(cs.Signer, sigData, sig) {
		return nil, ErrInvalidSignature
	}

	if cs.Signer != expectedSigner {
		return nil, errors.Wrap(ErrInvalidSignature, "signer is not the invitation verkey")
	}

	if len(sigData) <= timestampLen {
		return nil, errors.Wrap(ErrInvalidSignature, "truncated sig_data")
	}

	var conn Connection

	if err := json.Unmarshal(sigData[timestampLen:], &conn); err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, "unmarshal connection payload")
	}

	return &conn, nil
}
