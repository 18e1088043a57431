package models

import (
	"context"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

// Deletion is decided against consequences, not just status: a record can
// acquire irreversible side effects (inspections, stock, payments) before it
// reaches a terminal status. Every rule is checked independently and all
// violations are collected so the user sees every blocker at once.

// DeletionCheck is the variant type over deletable records. Each concrete
// input carries the snapshot fields its rules need; adding a case means
// writing a new input type, not extending a switch.
type DeletionCheck interface {
	deletionViolations() []Violation
}

type QuotationDeletion struct {
	Status          QuotationStatus
	SalesOrderCount int64
}

func (d QuotationDeletion) deletionViolations() []Violation {
	var violations []Violation
	if d.Status == QuotationStatusApproved {
		violations = append(violations, Violation{
			Kind: ViolationStatusBlocked, Entity: "quotation", Status: string(d.Status),
		})
	}
	if d.SalesOrderCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "quotation", Field: "sales order(s)", Count: d.SalesOrderCount,
		})
	}
	return violations
}

type PurchaseOrderDeletion struct {
	Status PurchaseOrderStatus
}

func (d PurchaseOrderDeletion) deletionViolations() []Violation {
	var violations []Violation
	switch d.Status {
	case PurchaseOrderStatusOpen, PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusFullyReceived:
		violations = append(violations, Violation{
			Kind: ViolationStatusBlocked, Entity: "purchase order", Status: string(d.Status),
		})
	}
	// Second, partially overlapping receipt check kept deliberately: its
	// denied-status union with the first is {OPEN, PARTIALLY_RECEIVED,
	// FULLY_RECEIVED, CLOSED}, and CLOSED is only reachable through it.
	if d.Status == PurchaseOrderStatusPartiallyReceived || d.Status == PurchaseOrderStatusClosed {
		violations = append(violations, Violation{
			Kind: ViolationStatusBlocked, Entity: "purchase order", Status: string(d.Status),
			Detail: "material has already been received against it",
		})
	}
	return violations
}

type SalesOrderDeletion struct {
	Status           SalesOrderStatus
	PackingListCount int64
	InvoiceCount     int64
}

func (d SalesOrderDeletion) deletionViolations() []Violation {
	var violations []Violation
	if d.PackingListCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "sales order", Field: "packing list(s)", Count: d.PackingListCount,
		})
	}
	if d.InvoiceCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "sales order", Field: "invoice(s)", Count: d.InvoiceCount,
		})
	}
	if d.Status == SalesOrderStatusClosed || d.Status == SalesOrderStatusFullyDispatched {
		violations = append(violations, Violation{
			Kind: ViolationStatusBlocked, Entity: "sales order", Status: string(d.Status),
		})
	}
	return violations
}

type InvoiceDeletion struct {
	PaymentReceiptCount int64
}

func (d InvoiceDeletion) deletionViolations() []Violation {
	// Invoices are never deletable, independent of status or payment history.
	violations := []Violation{{Kind: ViolationNeverDeletable, Entity: "invoice"}}
	if d.PaymentReceiptCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "invoice", Field: "payment receipt(s)", Count: d.PaymentReceiptCount,
			Detail: "deleting it would orphan recorded payments",
		})
	}
	return violations
}

type GoodsReceiptNoteDeletion struct {
	Status            GoodsReceiptNoteStatus
	InspectionCount   int64
	InventoryLotCount int64
}

func (d GoodsReceiptNoteDeletion) deletionViolations() []Violation {
	var violations []Violation
	if d.Status != GoodsReceiptNoteStatusDraft {
		violations = append(violations, Violation{
			Kind: ViolationStatusBlocked, Entity: "goods receipt note", Status: string(d.Status),
		})
	}
	if d.InspectionCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "goods receipt note", Field: "inspection(s)", Count: d.InspectionCount,
		})
	}
	if d.InventoryLotCount > 0 {
		violations = append(violations, Violation{
			Kind: ViolationLinkedRecords, Entity: "goods receipt note", Field: "inventory lot(s)", Count: d.InventoryLotCount,
		})
	}
	return violations
}

// CanDelete evaluates a deletion snapshot. Pure; the DB-backed CanDeleteRecord
// wrappers below assemble the snapshot and delegate here.
func CanDelete(check DeletionCheck) ValidationResult {
	result := ValidResult()
	for _, v := range check.deletionViolations() {
		result.AddError(v)
	}
	return result
}

func CanDeleteQuotation(ctx context.Context, id int) ValidationResult {
	logger := config.GetLogger()

	quotation, err := utils.FetchModel[Quotation](ctx, id)
	if err != nil {
		return lookupFailureResult(err, "quotation")
	}
	soCount, err := utils.ResourceCountWhere[SalesOrder](ctx, "quotation_id = ?", id)
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteQuotation", "count sales orders", id, err)
		return SystemErrorResult()
	}
	return CanDelete(QuotationDeletion{Status: quotation.Status, SalesOrderCount: soCount})
}

func CanDeletePurchaseOrder(ctx context.Context, id int) ValidationResult {
	po, err := utils.FetchModel[PurchaseOrder](ctx, id)
	if err != nil {
		return lookupFailureResult(err, "purchase order")
	}
	return CanDelete(PurchaseOrderDeletion{Status: po.Status})
}

func CanDeleteSalesOrder(ctx context.Context, id int) ValidationResult {
	logger := config.GetLogger()

	so, err := utils.FetchModel[SalesOrder](ctx, id)
	if err != nil {
		return lookupFailureResult(err, "sales order")
	}
	plCount, err := utils.ResourceCountWhere[PackingList](ctx, "sales_order_id = ?", id)
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteSalesOrder", "count packing lists", id, err)
		return SystemErrorResult()
	}
	invCount, err := utils.ResourceCountWhere[SalesInvoice](ctx, "sales_order_id = ?", id)
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteSalesOrder", "count invoices", id, err)
		return SystemErrorResult()
	}
	return CanDelete(SalesOrderDeletion{Status: so.Status, PackingListCount: plCount, InvoiceCount: invCount})
}

func CanDeleteSalesInvoice(ctx context.Context, id int) ValidationResult {
	logger := config.GetLogger()

	if _, err := utils.FetchModel[SalesInvoice](ctx, id); err != nil {
		return lookupFailureResult(err, "invoice")
	}
	receiptCount, err := utils.ResourceCountWhere[PaymentReceipt](ctx, "sales_invoice_id = ?", id)
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteSalesInvoice", "count payment receipts", id, err)
		return SystemErrorResult()
	}
	return CanDelete(InvoiceDeletion{PaymentReceiptCount: receiptCount})
}

func CanDeleteGoodsReceiptNote(ctx context.Context, id int) ValidationResult {
	logger := config.GetLogger()
	db := config.GetDB()

	grn, err := utils.FetchModel[GoodsReceiptNote](ctx, id)
	if err != nil {
		return lookupFailureResult(err, "goods receipt note")
	}

	var inspectionCount int64
	err = db.WithContext(ctx).Model(&Inspection{}).
		Where("grn_line_id IN (?)", db.Model(&GoodsReceiptNoteLine{}).Select("id").Where("goods_receipt_note_id = ?", id)).
		Count(&inspectionCount).Error
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteGoodsReceiptNote", "count inspections", id, err)
		return SystemErrorResult()
	}

	var lotCount int64
	err = db.WithContext(ctx).Model(&InventoryLot{}).
		Where("grn_line_id IN (?)", db.Model(&GoodsReceiptNoteLine{}).Select("id").Where("goods_receipt_note_id = ?", id)).
		Count(&lotCount).Error
	if err != nil {
		config.LogError(logger, "deletionGuard.go", "CanDeleteGoodsReceiptNote", "count inventory lots", id, err)
		return SystemErrorResult()
	}

	return CanDelete(GoodsReceiptNoteDeletion{Status: grn.Status, InspectionCount: inspectionCount, InventoryLotCount: lotCount})
}

func notFoundResult(entity string) ValidationResult {
	var r ValidationResult
	r.AddError(Violation{Kind: ViolationNotFound, Entity: entity})
	return r
}

// lookupFailureResult folds an entity-lookup failure into a result: not-found
// becomes a single not-found error, anything else fails closed.
func lookupFailureResult(err error, entity string) ValidationResult {
	if err == utils.ErrorRecordNotFound {
		return notFoundResult(entity)
	}
	config.LogError(config.GetLogger(), "deletionGuard.go", "lookupFailureResult", entity, nil, err)
	return SystemErrorResult()
}
