package models

import (
	"context"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

// Traceability: every downstream document must reference a valid,
// appropriately-staged upstream document. Each variant carries the proposed
// references plus the already-fetched upstream snapshots; a nil snapshot for
// a set reference means the upstream record does not exist. All independent
// checks within one variant accumulate; nothing short-circuits.

type TraceabilityCheck interface {
	traceViolations() []Violation
}

// A sales order must come from somewhere: either an internal quotation or the
// customer's own PO number. A referenced quotation must be APPROVED or SENT.
type SalesOrderTrace struct {
	QuotationId  *int
	CustomerPoNo *string
	Quotation    *Quotation
}

func (t SalesOrderTrace) traceViolations() []Violation {
	var violations []Violation
	hasQuotation := t.QuotationId != nil && *t.QuotationId > 0
	hasCustomerPo := t.CustomerPoNo != nil && *t.CustomerPoNo != ""
	if !hasQuotation && !hasCustomerPo {
		violations = append(violations, Violation{
			Kind: ViolationMissingReference, Entity: "sales order", Field: "a quotation or a customer po number",
		})
	}
	if hasQuotation {
		if t.Quotation == nil {
			violations = append(violations, Violation{Kind: ViolationNotFound, Entity: "quotation"})
		} else if t.Quotation.Status != QuotationStatusApproved && t.Quotation.Status != QuotationStatusSent {
			violations = append(violations, Violation{
				Kind: ViolationUpstreamStatus, Entity: "quotation", Status: string(t.Quotation.Status),
				Expected: []string{string(QuotationStatusApproved), string(QuotationStatusSent)},
			})
		}
	}
	return violations
}

// A PR reference on a purchase order is optional, but when present the
// requisition must be APPROVED.
type PurchaseOrderTrace struct {
	RequisitionId *int
	Requisition   *PurchaseRequisition
}

func (t PurchaseOrderTrace) traceViolations() []Violation {
	if t.RequisitionId == nil || *t.RequisitionId <= 0 {
		return nil
	}
	if t.Requisition == nil {
		return []Violation{{Kind: ViolationNotFound, Entity: "purchase requisition"}}
	}
	if t.Requisition.Status != PurchaseRequisitionStatusApproved {
		return []Violation{{
			Kind: ViolationUpstreamStatus, Entity: "purchase requisition", Status: string(t.Requisition.Status),
			Expected: []string{string(PurchaseRequisitionStatusApproved)},
		}}
	}
	return nil
}

// A GRN always receives against a purchase order; drafts and cancelled orders
// cannot receive goods.
type GoodsReceiptTrace struct {
	PurchaseOrderId *int
	PurchaseOrder   *PurchaseOrder
}

func (t GoodsReceiptTrace) traceViolations() []Violation {
	if t.PurchaseOrderId == nil || *t.PurchaseOrderId <= 0 {
		return []Violation{{Kind: ViolationMissingReference, Entity: "goods receipt note", Field: "a purchase order"}}
	}
	if t.PurchaseOrder == nil {
		return []Violation{{Kind: ViolationNotFound, Entity: "purchase order"}}
	}
	if t.PurchaseOrder.Status == PurchaseOrderStatusDraft || t.PurchaseOrder.Status == PurchaseOrderStatusCancelled {
		return []Violation{{
			Kind: ViolationUpstreamStatus, Entity: "purchase order", Status: string(t.PurchaseOrder.Status),
			Expected: []string{
				string(PurchaseOrderStatusOpen),
				string(PurchaseOrderStatusPartiallyReceived),
				string(PurchaseOrderStatusFullyReceived),
			},
		}}
	}
	return nil
}

type DispatchTrace struct {
	SalesOrderId *int
	SalesOrder   *SalesOrder
}

func (t DispatchTrace) traceViolations() []Violation {
	if t.SalesOrderId == nil || *t.SalesOrderId <= 0 {
		return []Violation{{Kind: ViolationMissingReference, Entity: "dispatch", Field: "a sales order"}}
	}
	if t.SalesOrder == nil {
		return []Violation{{Kind: ViolationNotFound, Entity: "sales order"}}
	}
	return nil
}

// ValidateTrace evaluates an assembled traceability snapshot. Pure.
func ValidateTrace(check TraceabilityCheck) ValidationResult {
	result := ValidResult()
	for _, v := range check.traceViolations() {
		result.AddError(v)
	}
	return result
}

/* DB-backed wrappers: assemble the snapshot, then delegate. Lookup failures
other than not-found fail closed as system errors. */

func ValidateSalesOrderTraceability(ctx context.Context, quotationId *int, customerPoNo *string) ValidationResult {
	trace := SalesOrderTrace{QuotationId: quotationId, CustomerPoNo: customerPoNo}
	if quotationId != nil && *quotationId > 0 {
		quotation, err := utils.FetchModel[Quotation](ctx, *quotationId)
		if err == nil {
			trace.Quotation = quotation
		} else if err != utils.ErrorRecordNotFound {
			config.LogError(config.GetLogger(), "traceability.go", "ValidateSalesOrderTraceability", "fetch quotation", *quotationId, err)
			return SystemErrorResult()
		}
	}
	return ValidateTrace(trace)
}

func ValidatePurchaseOrderTraceability(ctx context.Context, requisitionId *int) ValidationResult {
	trace := PurchaseOrderTrace{RequisitionId: requisitionId}
	if requisitionId != nil && *requisitionId > 0 {
		pr, err := utils.FetchModel[PurchaseRequisition](ctx, *requisitionId)
		if err == nil {
			trace.Requisition = pr
		} else if err != utils.ErrorRecordNotFound {
			config.LogError(config.GetLogger(), "traceability.go", "ValidatePurchaseOrderTraceability", "fetch requisition", *requisitionId, err)
			return SystemErrorResult()
		}
	}
	return ValidateTrace(trace)
}

func ValidateGoodsReceiptTraceability(ctx context.Context, purchaseOrderId *int) ValidationResult {
	trace := GoodsReceiptTrace{PurchaseOrderId: purchaseOrderId}
	if purchaseOrderId != nil && *purchaseOrderId > 0 {
		po, err := utils.FetchModel[PurchaseOrder](ctx, *purchaseOrderId)
		if err == nil {
			trace.PurchaseOrder = po
		} else if err != utils.ErrorRecordNotFound {
			config.LogError(config.GetLogger(), "traceability.go", "ValidateGoodsReceiptTraceability", "fetch purchase order", *purchaseOrderId, err)
			return SystemErrorResult()
		}
	}
	return ValidateTrace(trace)
}

func ValidateDispatchTraceability(ctx context.Context, salesOrderId *int) ValidationResult {
	trace := DispatchTrace{SalesOrderId: salesOrderId}
	if salesOrderId != nil && *salesOrderId > 0 {
		so, err := utils.FetchModel[SalesOrder](ctx, *salesOrderId)
		if err == nil {
			trace.SalesOrder = so
		} else if err != utils.ErrorRecordNotFound {
			config.LogError(config.GetLogger(), "traceability.go", "ValidateDispatchTraceability", "fetch sales order", *salesOrderId, err)
			return SystemErrorResult()
		}
	}
	return ValidateTrace(trace)
}
