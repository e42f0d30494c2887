/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package fingerprint encodes/decodes the multibase+multicodec "fingerprint"
// form of an Ed25519 verkey. The multicodec varint for Ed25519 public keys is 0xed01.
package fingerprint

import (
	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"
)

// ed25519MulticodecPrefix is the two-byte varint-encoded multicodec tag for
// an Ed25519 public key (0xed, 0x01), per the did:key / multicodec table.
var ed25519MulticodecPrefix = []byte{0xed, 0x01}

// Encode returns the base58btc-multibase fingerprint of an Ed25519 public
// key: multibase('z', multicodecPrefix || rawPub).
func Encode(rawPub []byte) (string, error) {
	prefixed := make([]byte, 0, len(ed25519MulticodecPrefix)+len(rawPub))
	prefixed = append(prefixed, ed25519MulticodecPrefix...)
	prefixed = append(prefixed, rawPub...)

	enc, err := multibase.Encode(multibase.Base58BTC, prefixed)
	if err != nil {
		return "", errors.Wrap(err, "fingerprint: encode")
	}

	return enc, nil
}

// Decode reverses Encode, stripping the multicodec prefix so the returned
// bytes are always the bare, unprefixed public key.
func Decode(fingerprint string) ([]byte, error) {
	_, data, err := multibase.Decode(fingerprint)
	if err != nil {
		return nil, errors.Wrap(err, "fingerprint: decode multibase")
	}

	if len(data) <= len(ed25519MulticodecPrefix) {
		return nil, errors.New("fingerprint: truncated multicodec value")
	}

	return data[len(ed25519MulticodecPrefix):], nil
}

// didKeyPrefix is the did:key method prefix the fingerprint is appended to.
const didKeyPrefix = "did:key:"

// CreateDIDKey builds a did:key identifier from a raw Ed25519 public key.
func CreateDIDKey(rawPub []byte) (string, error) {
	fp, err := Encode(rawPub)
	if err != nil {
		return "", err
	}

	return didKeyPrefix + fp, nil
}

// PubKeyFromDIDKey extracts the raw Ed25519 public key from a did:key
// identifier.
func PubKeyFromDIDKey(didKey string) ([]byte, error) {
	if len(didKey) <= len(didKeyPrefix) || didKey[:len(didKeyPrefix)] != didKeyPrefix {
		return nil, errors.New("fingerprint: not a did:key identifier")
	}

	return Decode(didKey[len(didKeyPrefix):])
}
