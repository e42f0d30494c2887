/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// edPublicKeyToCurve25519 maps an Ed25519 public key onto its Montgomery
// u-coordinate, i.e. the corresponding X25519 public key, via
// filippo.io/edwards25519's point arithmetic.
func edPublicKeyToCurve25519(edPub []byte) ([]byte, error) {
	pt := new(edwards25519.Point)

	_, err := pt.SetBytes(edPub)
	if err != nil {
		return nil, errors.Wrap(err, "not a valid ed25519 point")
	}

	return pt.BytesMontgomery(), nil
}

// edPrivateKeyToCurve25519 derives the X25519 scalar from an Ed25519
// private key. Go's ed25519.PrivateKey is seed||pubkey; the X25519 scalar
// is the (clamped) lower half of SHA-512(seed), which is precisely the
// scalar Ed25519 signing already uses internally.
func edPrivateKeyToCurve25519(edPriv []byte) []byte {
	h := sha512.Sum512(edPriv[:32])
	scalar := h[:32]

	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64

	return scalar
}
