/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package authcrypt implements the legacy Aries DIDComm v1 "Authcrypt"
// packer (RFC 0019): a JWE-shaped envelope whose per-recipient block
// authenticates the sender via a sealed sender-verkey and a box-encrypted
// content-encryption key.
package authcrypt

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

var logger = log.New("didcomm/packer/legacy/authcrypt")

const encodingType = "JWM/1.0"

// ErrInvalidStructure is returned for malformed envelopes (bad base64/JSON).
var ErrInvalidStructure = errors.New("authcrypt: invalid envelope structure")

// ErrDecryptionFailed covers tag mismatch, no matching recipient, or a bad
// sender signature on the authcrypt header.
var ErrDecryptionFailed = errors.New("authcrypt: decryption failed")

// Packer is the Authcrypt Packer.
type Packer struct {
	keys packer.KeySource
}

// New builds an Authcrypt packer backed by the given key source.
func New(keys packer.KeySource) *Packer {
	return &Packer{keys: keys}
}

type header struct {
	Enc        string      `json:"enc"`
	Typ        string      `json:"typ"`
	Alg        string      `json:"alg"`
	Recipients []recipient `json:"recipients"`
}

type recipient struct {
	EncryptedKey string           `json:"encrypted_key"`
	Header       recipientHeaders `json:"header"`
}

type recipientHeaders struct {
	KID    string `json:"kid"`
	Sender string `json:"sender,omitempty"`
	IV     string `json:"iv,omitempty"`
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

// Pack encrypts payload to recipientPubKeys, authenticated by senderPubKey.
// senderPubKey must be the raw Ed25519 public key bytes of the sender;
// Pack resolves the matching private key itself through the packer's
// KeySource (keys.PrivateKey), so the caller passes only the public key.
func (p *Packer) Pack(payload, senderPubKey []byte, recipientPubKeys [][]byte) ([]byte, error) {
	if len(recipientPubKeys) == 0 {
		return nil, errors.New("authcrypt: empty recipients, must have at least one recipient")
	}

	if len(senderPubKey) == 0 {
		return nil, errors.New("authcrypt: sender key required for authcrypt")
	}

	senderPriv, err := p.keys.PrivateKey(base58.Encode(senderPubKey))
	if err != nil {
		return nil, errors.Wrap(err, "authcrypt: resolve sender private key")
	}

	senderX25519Priv, err := kms.PrivateEd25519toX25519(senderPriv)
	if err != nil {
		return nil, errors.Wrap(err, "authcrypt: convert sender key")
	}

	cek := make([]byte, chacha.KeySize)
	if _, err = rand.Read(cek); err != nil {
		return nil, errors.Wrap(err, "authcrypt: generate cek")
	}

	nonce := make([]byte, chacha.NonceSizeX)
	if _, err = rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "authcrypt: generate nonce")
	}

	recipients := make([]recipient, len(recipientPubKeys))

	for i, recPub := range recipientPubKeys {
		recX25519Pub, convErr := kms.PublicEd25519toX25519(recPub)
		if convErr != nil {
			return nil, errors.Wrap(convErr, "authcrypt: convert recipient key")
		}

		recNonce := make([]byte, 24)
		if _, err = rand.Read(recNonce); err != nil {
			return nil, errors.Wrap(err, "authcrypt: generate recipient nonce")
		}

		encCEK, sealErr := cryptobox.Easy(cek, recNonce, recX25519Pub, senderX25519Priv)
		if sealErr != nil {
			return nil, errors.Wrap(sealErr, "authcrypt: wrap cek")
		}

		encSender, sealErr := cryptobox.Seal([]byte(base58.Encode(senderPubKey)), recX25519Pub, rand.Reader)
		if sealErr != nil {
			return nil, errors.Wrap(sealErr, "authcrypt: seal sender verkey")
		}

		recipients[i] = recipient{
			EncryptedKey: b64(encCEK),
			Header: recipientHeaders{
				KID:    base58.Encode(recPub),
				Sender: b64(encSender),
				IV:     b64(recNonce),
			},
		}
	}

	return sealMessage(nonce, cek, payload, recipients, "Authcrypt")
}

func sealMessage(nonce, cek, payload []byte, recipients []recipient, alg string) ([]byte, error) {
	h := header{
		Enc:        "xchacha20poly1305_ietf",
		Typ:        encodingType,
		Alg:        alg,
		Recipients: recipients,
	}

	hBytes, err := json.Marshal(h)
	if err != nil {
		return nil, errors.Wrap(err, "authcrypt: marshal header")
	}

	protected := b64(hBytes)

	aead, err := chacha.NewX(cek)
	if err != nil {
		return nil, errors.Wrap(err, "authcrypt: new aead")
	}

	sealed := aead.Seal(nil, nonce, payload, []byte(protected))
	tag := sealed[len(sealed)-poly1305.TagSize:]
	ciphertext := sealed[:len(sealed)-poly1305.TagSize]

	env := envelope{
		Protected:  protected,
		IV:         b64(nonce),
		CipherText: b64(ciphertext),
		Tag:        b64(tag),
	}

	out, err := json.Marshal(env)
	if err != nil {
		return nil, errors.Wrap(err, "authcrypt: marshal envelope")
	}

	return out, nil
}

// Unpack decrypts an authcrypt envelope, returning the message, the
// resolved recipient verkey, and the (verified) sender verkey.
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

	if h.Alg != "Authcrypt" {
		return nil, errors.Wrap(ErrInvalidStructure, "not an authcrypt envelope")
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
			logger.Debugf("authcrypt: recipient %s failed to decrypt, trying next: %v", rec.Header.KID, unpackErr)
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

	encSender, err := unb64(rec.Header.Sender)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode sender header")
	}

	senderVKBytes, err := cryptobox.SealOpen(encSender, recX25519Pub, recX25519Priv)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	senderVK := string(senderVKBytes)

	senderPubBytes := base58.Decode(senderVK)

	senderX25519Pub, err := kms.PublicEd25519toX25519(senderPubBytes)
	if err != nil {
		return nil, err
	}

	recNonce, err := unb64(rec.Header.IV)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode recipient iv")
	}

	encCEK, err := unb64(rec.EncryptedKey)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidStructure, "decode encrypted_key")
	}

	cek, err := cryptobox.EasyOpen(encCEK, recNonce, senderX25519Pub, recX25519Priv)
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
		Message:    plaintext,
		ToVerKey:   rec.Header.KID,
		FromVerKey: senderVK,
	}, nil
}

// EncodingType identifies this packer for packager routing.
func (p *Packer) EncodingType() string {
	return "didcomm-envelope-enc-authcrypt"
}
