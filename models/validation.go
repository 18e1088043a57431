package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ViolationKind classifies a business-rule violation. The kind plus the typed
// fields on Violation are the canonical representation; Message() is only the
// default English rendering. Callers that need localized or machine-readable
// output should consume the kind and fields, not parse the prose.
type ViolationKind string

const (
	ViolationInvalidTransition ViolationKind = "INVALID_TRANSITION"
	ViolationMissingField      ViolationKind = "MISSING_FIELD"
	ViolationNotFound          ViolationKind = "NOT_FOUND"
	ViolationStatusBlocked     ViolationKind = "STATUS_BLOCKED"
	ViolationLinkedRecords     ViolationKind = "LINKED_RECORDS"
	ViolationNeverDeletable    ViolationKind = "NEVER_DELETABLE"
	ViolationMissingReference  ViolationKind = "MISSING_REFERENCE"
	ViolationUpstreamStatus    ViolationKind = "UPSTREAM_STATUS"
	ViolationNoStock           ViolationKind = "NO_STOCK"
	ViolationFIFOOrder         ViolationKind = "FIFO_ORDER"
	ViolationSystemError       ViolationKind = "SYSTEM_ERROR"
)

type Violation struct {
	Kind     ViolationKind
	Entity   string   // human entity name, e.g. "quotation"
	Field    string   // offending field or linked record noun
	From     string   // transition source status
	To       string   // transition target status
	Status   string   // offending current status
	Expected []string // acceptable statuses for UPSTREAM_STATUS
	Count    int64    // linked record count
	Heats    []string // FIFO heat numbers (oldest-first recommendation)
	Detail   string   // optional escalation clause appended to the message
}

func (v Violation) Message() string {
	var msg string
	switch v.Kind {
	case ViolationInvalidTransition:
		msg = fmt.Sprintf("cannot change status from %s to %s", v.From, v.To)
	case ViolationMissingField:
		if v.Status != "" {
			msg = fmt.Sprintf("%s is required when marking %s as %s", v.Field, v.Entity, v.Status)
		} else {
			msg = fmt.Sprintf("%s is required", v.Field)
		}
	case ViolationNotFound:
		if v.Entity != "" {
			msg = v.Entity + " not found"
		} else {
			msg = "record not found"
		}
	case ViolationStatusBlocked:
		msg = fmt.Sprintf("cannot delete %s with status %s", v.Entity, v.Status)
	case ViolationLinkedRecords:
		msg = fmt.Sprintf("%s is referenced by %d %s", v.Entity, v.Count, v.Field)
	case ViolationNeverDeletable:
		msg = fmt.Sprintf("%ss cannot be deleted once created", v.Entity)
	case ViolationMissingReference:
		msg = fmt.Sprintf("%s must reference %s", v.Entity, v.Field)
	case ViolationUpstreamStatus:
		msg = fmt.Sprintf("%s is in status %s; expected %s", v.Entity, v.Status, strings.Join(v.Expected, " or "))
	case ViolationNoStock:
		msg = "no stock available"
	case ViolationFIFOOrder:
		msg = fmt.Sprintf("requested heat numbers skip older stock; oldest available heat numbers are %s", strings.Join(v.Heats, ", "))
	case ViolationSystemError:
		msg = "validation check failed due to system error"
	default:
		msg = string(v.Kind)
	}
	if v.Detail != "" {
		msg = msg + "; " + v.Detail
	}
	return msg
}

// ValidationResult is the uniform allow/deny/warn answer produced by every
// validator. IsValid is true iff Errors is empty; Warnings never affect it.
type ValidationResult struct {
	IsValid  bool
	Errors   []Violation
	Warnings []Violation
}

func ValidResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

func (r *ValidationResult) AddError(v Violation) {
	r.Errors = append(r.Errors, v)
	r.IsValid = false
}

func (r *ValidationResult) AddWarning(v Violation) {
	r.Warnings = append(r.Warnings, v)
}

func (r ValidationResult) ErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, v := range r.Errors {
		msgs = append(msgs, v.Message())
	}
	return msgs
}

func (r ValidationResult) WarningMessages() []string {
	msgs := make([]string, 0, len(r.Warnings))
	for _, v := range r.Warnings {
		msgs = append(msgs, v.Message())
	}
	return msgs
}

// MarshalJSON renders the legacy wire shape: messages as plain strings.
func (r ValidationResult) MarshalJSON() ([]byte, error) {
	out := struct {
		IsValid  bool     `json:"is_valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings,omitempty"`
	}{
		IsValid:  r.IsValid,
		Errors:   r.ErrorMessages(),
		Warnings: r.WarningMessages(),
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	return json.Marshal(out)
}

// SystemErrorResult folds an unexpected infrastructure failure into an invalid
// result. Fails closed: the operation is denied rather than allowed through.
func SystemErrorResult() ValidationResult {
	var r ValidationResult
	r.AddError(Violation{Kind: ViolationSystemError})
	return r
}
