/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package problemreport holds the shared ProblemReport message shape and
// the family-specific type-URI resolution this core applies: a
// family-scoped problem-report URI when the error surfaces inside a
// specific protocol, falling back to the generic notification family
// otherwise.
package problemreport

import "github.com/google/uuid"

// Code is a coarse machine-readable failure reason, carried in the
// "description.code" field per the Aries report-problem RFC.
type Code string

// Failure codes this core can emit.
const (
	CodeThreadMismatch   Code = "thread-mismatch"
	CodeInvalidSignature Code = "invalid-signature"
	CodeInvalidDIDDoc    Code = "invalid-did-doc"
	CodeUnsupportedType  Code = "unsupported-message-type"
)

// Description carries the machine code and a human summary.
type Description struct {
	Code Code   `json:"code"`
	EN   string `json:"en,omitempty"`
}

// Thread decorates the report with the thread it refers to, when known.
type Thread struct {
	ID string `json:"thid,omitempty"`
}

// Report is the generic Aries problem-report body; its @type is filled in
// per-family by New.
type Report struct {
	ID          string      `json:"@id"`
	Type        string      `json:"@type"`
	Thread      *Thread     `json:"~thread,omitempty"`
	Description Description `json:"description"`
}

// Family identifies the protocol a ProblemReport is raised inside of, for
// type-URI resolution.
type Family string

// Known families. Connections and Mediation resolve to their own
// family-scoped URI; None falls back to the generic notification family.
const (
	FamilyConnections Family = "connections/1.0"
	FamilyMediation   Family = "coordinate-mediation/1.0"
	FamilyNone        Family = ""
)

const genericProblemReportType = "notification/1.0/problem-report"

// TypeURI resolves the @type a Report should be emitted with for family f.
// Outside of any recognized family, the generic notification URI is used.
func TypeURI(f Family) string {
	switch f {
	case FamilyConnections:
		return "connections/1.0/problem_report"
	case FamilyMediation:
		return "coordinate-mediation/1.0/problem-report"
	default:
		return genericProblemReportType
	}
}

// New builds a Report scoped to family f, referencing threadID and code.
func New(f Family, threadID string, code Code, msg string) *Report {
	var thread *Thread
	if threadID != "" {
		thread = &Thread{ID: threadID}
	}

	return &Report{
		ID:          uuid.NewString(),
		Type:        TypeURI(f),
		Thread:      thread,
		Description: Description{Code: code, EN: msg},
	}
}
