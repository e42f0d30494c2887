/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package service provides the generic DIDCommMsgMap envelope used to
// dispatch an inbound plaintext message to the protocol that understands
// its @type, plus the type-URI normalizer: both the classic
// did:sov:...;spec/ and modern https://didcomm.org/ prefixes parse, and
// RawType keeps the form the peer used. Nothing in this package rewrites
// the @type of a reply.
package service

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// DIDCommMsgMap is a generic decoded JSON message, keeping the raw type
// prefix the peer sent so a reply can mirror it.
type DIDCommMsgMap struct {
	raw        map[string]interface{}
	rawType    string
	normalized string
}

// ParseDIDCommMsgMap unmarshals plaintext into a DIDCommMsgMap and
// normalizes its @type.
func ParseDIDCommMsgMap(plaintext []byte) (DIDCommMsgMap, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(plaintext, &raw); err != nil {
		return DIDCommMsgMap{}, errors.Wrap(err, "service: parse message")
	}

	t, _ := raw["@type"].(string)

	return DIDCommMsgMap{
		raw:        raw,
		rawType:    t,
		normalized: NormalizeType(t),
	}, nil
}

// Type returns the normalized (family/version/name) message type.
func (m DIDCommMsgMap) Type() string { return m.normalized }

// RawType returns the @type exactly as the peer sent it, for symmetric
// replies.
func (m DIDCommMsgMap) RawType() string { return m.rawType }

// ID returns the message's @id, if present.
func (m DIDCommMsgMap) ID() string {
	id, _ := m.raw["@id"].(string)
	return id
}

// ThreadID returns the ~thread.thid, falling back to @id (many Aries
// message types use @id as their own thread anchor when no ~thread
// decorator is present).
func (m DIDCommMsgMap) ThreadID() string {
	if thid := gjson.GetBytes(m.mustJSON(), `~thread.thid`); thid.Exists() && thid.String() != "" {
		return thid.String()
	}

	return m.ID()
}

// ParentThreadID returns ~thread.pthid, or "" if absent.
func (m DIDCommMsgMap) ParentThreadID() string {
	return gjson.GetBytes(m.mustJSON(), `~thread.pthid`).String()
}

func (m DIDCommMsgMap) mustJSON() []byte {
	b, _ := json.Marshal(m.raw)
	return b
}

// Decode maps the generic message into a typed struct via mapstructure,
// tagged with "json" (reusing json tags for mapstructure decoding of
// already-unmarshalled maps).
func (m DIDCommMsgMap) Decode(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: out})
	if err != nil {
		return errors.Wrap(err, "service: new decoder")
	}

	return dec.Decode(m.raw)
}

// classicPrefixMarker and modernPrefix are the two coexisting message-type
// URI forms this core accepts on parse.
const (
	classicPrefixMarker = ";spec/"
	modernPrefix        = "https://didcomm.org/"
)

// NormalizeType strips either the classic did:sov:...;spec/ prefix or the
// modern https://didcomm.org/ prefix, returning the bare
// "family/version/name" form used internally for dispatch.
func NormalizeType(raw string) string {
	if idx := strings.Index(raw, classicPrefixMarker); idx >= 0 {
		return raw[idx+len(classicPrefixMarker):]
	}

	if strings.HasPrefix(raw, modernPrefix) {
		return raw[len(modernPrefix):]
	}

	return raw
}
