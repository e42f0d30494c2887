/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncrypt implements the legacy Aries DIDComm v1 "Anoncrypt"
// packer: sender-anonymous JWE where each recipient's content-encryption
// key is wrapped with a sealed (ephemeral-key) box rather than an
// authenticated one.
package anoncrypt

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
	chacha "golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/poly1305"

	"github.com/aries-community/didcomm-core/internal/log"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer"
	"github.com/aries-community/didcomm-core/pkg/didcomm/packer/legacy/cryptobox"
	"github.com/aries-community/didcomm-core/pkg/kms"
)

var logger = log.New("didcomm/packer/legacy/anoncrypt")

// ErrInvalidStructure mirrors authcrypt.ErrInvalidStructure for anoncrypt
// envelopes.
var ErrInvalidStructure = errors.New("anoncrypt: invalid envelope structure")

// ErrDecryptionFailed mirrors authcrypt.ErrDecryptionFailed.
var ErrDecryptionFailed = errors.New("anoncrypt: decryption failed")

type header struct {
	Enc        string      `json:"enc"`
	Typ        string      `json:"typ"`
	Alg        string      `json:"alg"`
	Recipients []recipient `json:"recipients"`
}

type recipient struct {
	EncryptedKey string `json:"encrypted_key"`
	Header       struct {
		KID string `json:"kid"`
	} `json:"header"`
}

type envelope struct {
	Protected  string `json:"protected"`
	IV         string `json:"iv"`
	CipherText string `json:"ciphertext"`
	Tag        string `json:"tag"`
}

func b64(b []byte) string { return base64.URLEncoding.EncodeToString(b) }

func unb64(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}

	return base64.RawURLEncoding.DecodeString(s)
}

// Packer is the Anoncrypt Packer. It requires no sender key; _ parameter is
// accepted to satisfy the common packer.Packer signature.
type Packer struct {
	keys packer.KeySource
}

// New builds an Anoncrypt packer backed by the given key source.
func New(keys packer.KeySource) *Packer {
	return &Packer{keys: keys}
}

// Pack anonymously encrypts payload to recipientPubKeys.
func (p *Packer) Pack(payload, _ []byte, recipientPubKeys [][]byte) ([]byte, error) {
	if len(recipientPubKeys) == 0 {
		return nil, errors.New("anoncrypt: empty recipients, must have at least one recipient")
	}

	cek := make([]byte, chacha.KeySize)
	if _, err := rand.Read(cek); err != nil {
		return nil, errors.Wrap(err, "anoncrypt: generate cek")
	}

	nonce := make([]byte, chacha.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "anoncrypt: generate nonce")
	}

	recipients := make([]recipient, len(recipientPubKeys))

	for i, recPub := range recipientPubKeys {
		recX25519Pub, err := kms.PublicEd25519toX25519(recPub)
		if err != nil {
			return nil, errors.Wrap(err, "anoncrypt: convert recipient key")
		}

		encCEK, err := cryptobox.Seal(cek, recX25519Pub, rand.Reader)
		if err != nil {
			return nil, errors.Wrap(err, "anoncrypt: seal cek")
		}

		recipients[i].EncryptedKey = b64(encCEK)
		recipients[i].Header.KID = base58.Encode(recPub)
	}

	h := header{
		Enc:        "xchacha20poly1305_ietf",
		Typ:        "JWM/1.0",
		Alg:        "Anoncrypt",
		Recipients: recipients,
	}

	hBytes, err := json.Marshal(h)
	if err != nil {
		return nil, errors.Wrap(err, "anoncrypt: marshal header")
	}

	protected := b64(hBytes)

	aead, err := chacha.NewX(cek)
	if err != nil {
		return nil, errors.Wrap(err, "anoncrypt: new aead")
	}

	sealed := aead.Seal(nil, nonce, payload, []byte(protected))
	tag := sealed[len(sealed)-poly1305.TagSize:]
	ciphertext := sealed[:len(sealed)-poly1305.TagSize]

	out, err := json.Marshal(envelope{
		Protected:  protected,
		IV:         b64(nonce),
		CipherText: b64(ciphertext),
		Tag:        b64(tag),
	})
	if err != nil {
		return nil, errors.Wrap(err, "anoncrypt: marshal envelope")
	}

	return out, nil
}

// Unpack decrypts an anoncrypt envelope. The returned FromVerKey is always
// empty, since anoncrypt never authenticates a sender.
func (p *Packer) Unpack(envBytes []byte) (*packer.UnpackedEnvelope, error) {
	var env envelope
	if err := json.Unmarshal(envBytes, &env); err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, err.Error())
	}

	protectedBytes, err := unb64(env.Protected)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode protected header")
	}

	var h header
	if err = json.Unmarshal(protectedBytes, &h); err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "parse protected header")
	}

	if h.Alg != "Anoncrypt" {
		return nil, errors.Wrap(ErrInvalidStructure, "not an anoncrypt envelope")
	}

	iv, err := unb64(env.IV)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode iv")
	}

	ciphertext, err := unb64(env.CipherText)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode ciphertext")
	}

	tag, err := unb64(env.Tag)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode tag")
	}

	for _, rec := range h.Recipients {
		if !p.keys.HasKey(rec.Header.KID) {
			continue
		}

		out, unpackErr := p.unpackFor(rec, env.Protected, iv, ciphertext, tag)
		if unpackErr != nil {
			logger.Debugf("anoncrypt: recipient %s failed to decrypt, trying next: %v", rec.Header.KID, unpackErr)
			continue
		}

		return out, nil
	}

	return nil, ErrDecryptionFailed
}

func (p *Packer) unpackFor(rec recipient, protected string, iv, ciphertext, tag []byte) (*packer.UnpackedEnvelope, error) { //nolint:lll
	recipientPriv, err := p.keys.PrivateKey(rec.Header.KID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve recipient private key")
	}

	recX25519Priv, err := kms.PrivateEd25519toX25519(recipientPriv)
	if err != nil {
		return nil, err
	}

	recPubBytes := base58.Decode(rec.Header.KID)

	recX25519Pub, err := kms.PublicEd25519toX25519(recPubBytes)
	if err != nil {
		return nil, err
	}

	encCEK, err := unb64(rec.EncryptedKey)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode encrypted_key")
	}

	cek, err := cryptobox.SealOpen(encCEK, recX25519Pub, recX25519Priv)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	aead, err := chacha.NewX(cek)
	if err != nil {
		return nil, err
	}

	sealed := append(append([]byte(nil), ciphertext...), tag...)

	plaintext, err := aead.Open(nil, iv, sealed, []byte(protected))
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return &packer.UnpackedEnvelope{
		Message:  plaintext,
		ToVerKey: rec.Header.KID,
	}, nil
}

// EncodingType identifies this packer for packager routing.
func (p *Packer) EncodingType() string {
	return "didcomm-envelope-enc-anoncrypt"
}
