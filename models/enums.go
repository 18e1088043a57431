package models

import (
	"errors"
	"strconv"
)

type QuotationStatus string

const (
	QuotationStatusDraft           QuotationStatus = "DRAFT"
	QuotationStatusPendingApproval QuotationStatus = "PENDING_APPROVAL"
	QuotationStatusApproved        QuotationStatus = "APPROVED"
	QuotationStatusRejected        QuotationStatus = "REJECTED"
	QuotationStatusSent            QuotationStatus = "SENT"
	QuotationStatusWon             QuotationStatus = "WON"
	QuotationStatusLost            QuotationStatus = "LOST"
	QuotationStatusExpired         QuotationStatus = "EXPIRED"
	QuotationStatusRevised         QuotationStatus = "REVISED"
	QuotationStatusSuperseded      QuotationStatus = "SUPERSEDED"
	QuotationStatusCancelled       QuotationStatus = "CANCELLED"
)

func (s *QuotationStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("quotation status must be string")
	}
	quotationStatus := map[string]QuotationStatus{
		"DRAFT":            QuotationStatusDraft,
		"PENDING_APPROVAL": QuotationStatusPendingApproval,
		"APPROVED":         QuotationStatusApproved,
		"REJECTED":         QuotationStatusRejected,
		"SENT":             QuotationStatusSent,
		"WON":              QuotationStatusWon,
		"LOST":             QuotationStatusLost,
		"EXPIRED":          QuotationStatusExpired,
		"REVISED":          QuotationStatusRevised,
		"SUPERSEDED":       QuotationStatusSuperseded,
		"CANCELLED":        QuotationStatusCancelled,
	}
	v, ok := quotationStatus[str]
	if !ok {
		return errors.New("invalid quotation status")
	}
	*s = v
	return nil
}

type PurchaseRequisitionStatus string

const (
	PurchaseRequisitionStatusDraft           PurchaseRequisitionStatus = "DRAFT"
	PurchaseRequisitionStatusPendingApproval PurchaseRequisitionStatus = "PENDING_APPROVAL"
	PurchaseRequisitionStatusApproved        PurchaseRequisitionStatus = "APPROVED"
	PurchaseRequisitionStatusRejected        PurchaseRequisitionStatus = "REJECTED"
	PurchaseRequisitionStatusConverted       PurchaseRequisitionStatus = "CONVERTED"
	PurchaseRequisitionStatusCancelled       PurchaseRequisitionStatus = "CANCELLED"
)

func (s *PurchaseRequisitionStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("purchase requisition status must be string")
	}
	requisitionStatus := map[string]PurchaseRequisitionStatus{
		"DRAFT":            PurchaseRequisitionStatusDraft,
		"PENDING_APPROVAL": PurchaseRequisitionStatusPendingApproval,
		"APPROVED":         PurchaseRequisitionStatusApproved,
		"REJECTED":         PurchaseRequisitionStatusRejected,
		"CONVERTED":        PurchaseRequisitionStatusConverted,
		"CANCELLED":        PurchaseRequisitionStatusCancelled,
	}
	v, ok := requisitionStatus[str]
	if !ok {
		return errors.New("invalid purchase requisition status")
	}
	*s = v
	return nil
}

type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft             PurchaseOrderStatus = "DRAFT"
	PurchaseOrderStatusOpen              PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusPartiallyReceived PurchaseOrderStatus = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusFullyReceived     PurchaseOrderStatus = "FULLY_RECEIVED"
	PurchaseOrderStatusClosed            PurchaseOrderStatus = "CLOSED"
	PurchaseOrderStatusCancelled         PurchaseOrderStatus = "CANCELLED"
)

func (s *PurchaseOrderStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("purchase order status must be string")
	}
	purchaseOrderStatus := map[string]PurchaseOrderStatus{
		"DRAFT":              PurchaseOrderStatusDraft,
		"OPEN":               PurchaseOrderStatusOpen,
		"PARTIALLY_RECEIVED": PurchaseOrderStatusPartiallyReceived,
		"FULLY_RECEIVED":     PurchaseOrderStatusFullyReceived,
		"CLOSED":             PurchaseOrderStatusClosed,
		"CANCELLED":          PurchaseOrderStatusCancelled,
	}
	v, ok := purchaseOrderStatus[str]
	if !ok {
		return errors.New("invalid purchase order status")
	}
	*s = v
	return nil
}

type SalesOrderStatus string

const (
	SalesOrderStatusOpen                SalesOrderStatus = "OPEN"
	SalesOrderStatusPartiallyDispatched SalesOrderStatus = "PARTIALLY_DISPATCHED"
	SalesOrderStatusFullyDispatched     SalesOrderStatus = "FULLY_DISPATCHED"
	SalesOrderStatusClosed              SalesOrderStatus = "CLOSED"
	SalesOrderStatusCancelled           SalesOrderStatus = "CANCELLED"
)

func (s *SalesOrderStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("sales order status must be string")
	}
	salesOrderStatus := map[string]SalesOrderStatus{
		"OPEN":                 SalesOrderStatusOpen,
		"PARTIALLY_DISPATCHED": SalesOrderStatusPartiallyDispatched,
		"FULLY_DISPATCHED":     SalesOrderStatusFullyDispatched,
		"CLOSED":               SalesOrderStatusClosed,
		"CANCELLED":            SalesOrderStatusCancelled,
	}
	v, ok := salesOrderStatus[str]
	if !ok {
		return errors.New("invalid sales order status")
	}
	*s = v
	return nil
}

type GoodsReceiptNoteStatus string

const (
	GoodsReceiptNoteStatusDraft           GoodsReceiptNoteStatus = "DRAFT"
	GoodsReceiptNoteStatusPosted          GoodsReceiptNoteStatus = "POSTED"
	GoodsReceiptNoteStatusUnderInspection GoodsReceiptNoteStatus = "UNDER_INSPECTION"
	GoodsReceiptNoteStatusQcComplete      GoodsReceiptNoteStatus = "QC_COMPLETE"
	GoodsReceiptNoteStatusCancelled       GoodsReceiptNoteStatus = "CANCELLED"
)

func (s *GoodsReceiptNoteStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("goods receipt note status must be string")
	}
	grnStatus := map[string]GoodsReceiptNoteStatus{
		"DRAFT":            GoodsReceiptNoteStatusDraft,
		"POSTED":           GoodsReceiptNoteStatusPosted,
		"UNDER_INSPECTION": GoodsReceiptNoteStatusUnderInspection,
		"QC_COMPLETE":      GoodsReceiptNoteStatusQcComplete,
		"CANCELLED":        GoodsReceiptNoteStatusCancelled,
	}
	v, ok := grnStatus[str]
	if !ok {
		return errors.New("invalid goods receipt note status")
	}
	*s = v
	return nil
}

type SalesInvoiceStatus string

const (
	SalesInvoiceStatusDraft         SalesInvoiceStatus = "DRAFT"
	SalesInvoiceStatusIssued        SalesInvoiceStatus = "ISSUED"
	SalesInvoiceStatusPartiallyPaid SalesInvoiceStatus = "PARTIALLY_PAID"
	SalesInvoiceStatusPaid          SalesInvoiceStatus = "PAID"
	SalesInvoiceStatusCancelled     SalesInvoiceStatus = "CANCELLED"
)

func (s *SalesInvoiceStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("sales invoice status must be string")
	}
	invoiceStatus := map[string]SalesInvoiceStatus{
		"DRAFT":          SalesInvoiceStatusDraft,
		"ISSUED":         SalesInvoiceStatusIssued,
		"PARTIALLY_PAID": SalesInvoiceStatusPartiallyPaid,
		"PAID":           SalesInvoiceStatusPaid,
		"CANCELLED":      SalesInvoiceStatusCancelled,
	}
	v, ok := invoiceStatus[str]
	if !ok {
		return errors.New("invalid sales invoice status")
	}
	*s = v
	return nil
}

type NCRStatus string

const (
	NCRStatusOpen        NCRStatus = "OPEN"
	NCRStatusUnderReview NCRStatus = "UNDER_REVIEW"
	NCRStatusClosed      NCRStatus = "CLOSED"
)

func (s *NCRStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("ncr status must be string")
	}
	ncrStatus := map[string]NCRStatus{
		"OPEN":         NCRStatusOpen,
		"UNDER_REVIEW": NCRStatusUnderReview,
		"CLOSED":       NCRStatusClosed,
	}
	v, ok := ncrStatus[str]
	if !ok {
		return errors.New("invalid ncr status")
	}
	*s = v
	return nil
}

type DispatchStatus string

const (
	DispatchStatusDraft      DispatchStatus = "DRAFT"
	DispatchStatusDispatched DispatchStatus = "DISPATCHED"
	DispatchStatusDelivered  DispatchStatus = "DELIVERED"
)

func (s *DispatchStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("dispatch status must be string")
	}
	dispatchStatus := map[string]DispatchStatus{
		"DRAFT":      DispatchStatusDraft,
		"DISPATCHED": DispatchStatusDispatched,
		"DELIVERED":  DispatchStatusDelivered,
	}
	v, ok := dispatchStatus[str]
	if !ok {
		return errors.New("invalid dispatch status")
	}
	*s = v
	return nil
}

// InspectionResult is a field on Inspection, not a document lifecycle.
// PENDING and HOLD leave the report requirement dormant; PASS and FAIL arm it.
type InspectionResult string

const (
	InspectionResultPending InspectionResult = "PENDING"
	InspectionResultHold    InspectionResult = "HOLD"
	InspectionResultPass    InspectionResult = "PASS"
	InspectionResultFail    InspectionResult = "FAIL"
)

func (r InspectionResult) IsDecided() bool {
	return r == InspectionResultPass || r == InspectionResultFail
}

func (r *InspectionResult) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("inspection result must be string")
	}
	inspectionResult := map[string]InspectionResult{
		"PENDING": InspectionResultPending,
		"HOLD":    InspectionResultHold,
		"PASS":    InspectionResultPass,
		"FAIL":    InspectionResultFail,
	}
	v, ok := inspectionResult[str]
	if !ok {
		return errors.New("invalid inspection result")
	}
	*r = v
	return nil
}

type InventoryLotStatus string

const (
	InventoryLotStatusUnderInspection InventoryLotStatus = "UNDER_INSPECTION"
	InventoryLotStatusAccepted        InventoryLotStatus = "ACCEPTED"
	InventoryLotStatusRejected        InventoryLotStatus = "REJECTED"
	InventoryLotStatusHold            InventoryLotStatus = "HOLD"
	InventoryLotStatusReserved        InventoryLotStatus = "RESERVED"
	InventoryLotStatusDispatched      InventoryLotStatus = "DISPATCHED"
)

func (s *InventoryLotStatus) UnmarshalJSON(b []byte) error {
	str, err := unquote(b)
	if err != nil {
		return errors.New("inventory lot status must be string")
	}
	lotStatus := map[string]InventoryLotStatus{
		"UNDER_INSPECTION": InventoryLotStatusUnderInspection,
		"ACCEPTED":         InventoryLotStatusAccepted,
		"REJECTED":         InventoryLotStatusRejected,
		"HOLD":             InventoryLotStatusHold,
		"RESERVED":         InventoryLotStatusReserved,
		"DISPATCHED":       InventoryLotStatusDispatched,
	}
	v, ok := lotStatus[str]
	if !ok {
		return errors.New("invalid inventory lot status")
	}
	*s = v
	return nil
}

type PackingListStatus string

const (
	PackingListStatusDraft     PackingListStatus = "DRAFT"
	PackingListStatusConfirmed PackingListStatus = "CONFIRMED"
)

type RevisionEventStatus string

const (
	RevisionEventStatusPending   RevisionEventStatus = "PENDING"
	RevisionEventStatusProcessed RevisionEventStatus = "PROCESSED"
	RevisionEventStatusFailed    RevisionEventStatus = "FAILED"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "A"
	UserRoleStaff UserRole = "S"
)

func unquote(b []byte) (string, error) {
	return strconv.Unquote(string(b))
}
