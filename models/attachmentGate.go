package models

import (
	"context"

	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

// Quality/compliance gating: an entity may not advance past its gate until the
// required evidence exists. The gate never mutates anything; status-change
// paths consult it before committing.

// AttachmentGated is the variant type over gated entities.
type AttachmentGated interface {
	attachmentViolations() []Violation
}

// A GRN needs both the MTC number and the uploaded certificate before posting.
func (grn GoodsReceiptNote) attachmentViolations() []Violation {
	var violations []Violation
	if grn.MtcNo == "" {
		violations = append(violations, Violation{Kind: ViolationMissingField, Field: "mtc no"})
	}
	if grn.MtcDocumentPath == "" {
		violations = append(violations, Violation{Kind: ViolationMissingField, Field: "mtc document"})
	}
	return violations
}

// An inspection still pending or on hold is valid as-is; once the result is
// decided (PASS or FAIL) the report becomes mandatory.
func (insp Inspection) attachmentViolations() []Violation {
	if !insp.OverallResult.IsDecided() {
		return nil
	}
	if insp.ReportPath == "" {
		return []Violation{{Kind: ViolationMissingField, Field: "inspection report"}}
	}
	return nil
}

func (ncr NCR) attachmentViolations() []Violation {
	if len(ncr.EvidencePaths) == 0 {
		return []Violation{{Kind: ViolationMissingField, Field: "evidence"}}
	}
	return nil
}

// ValidateAttachments evaluates a gated entity snapshot. Pure.
func ValidateAttachments(entity AttachmentGated) ValidationResult {
	result := ValidResult()
	for _, v := range entity.attachmentViolations() {
		result.AddError(v)
	}
	return result
}

// AttachmentEntityType names the gated entity kinds on the REST surface.
type AttachmentEntityType string

const (
	AttachmentEntityGRN        AttachmentEntityType = "GRN"
	AttachmentEntityInspection AttachmentEntityType = "INSPECTION"
	AttachmentEntityNCR        AttachmentEntityType = "NCR"
)

// ValidateMandatoryAttachments loads the entity and evaluates its gate.
// A missing entity yields a single not-found error; nothing is thrown.
func ValidateMandatoryAttachments(ctx context.Context, entityType AttachmentEntityType, id int) ValidationResult {
	switch entityType {
	case AttachmentEntityGRN:
		grn, err := utils.FetchModel[GoodsReceiptNote](ctx, id)
		if err != nil {
			return lookupFailureResult(err, "goods receipt note")
		}
		return ValidateAttachments(*grn)
	case AttachmentEntityInspection:
		insp, err := utils.FetchModel[Inspection](ctx, id)
		if err != nil {
			return lookupFailureResult(err, "inspection")
		}
		return ValidateAttachments(*insp)
	case AttachmentEntityNCR:
		ncr, err := utils.FetchModel[NCR](ctx, id)
		if err != nil {
			return lookupFailureResult(err, "ncr")
		}
		return ValidateAttachments(*ncr)
	default:
		return notFoundResult(string(entityType))
	}
}
