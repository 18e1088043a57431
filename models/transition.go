package models

import "fmt"

type DocumentType string

const (
	DocumentTypeQuotation           DocumentType = "QUOTATION"
	DocumentTypePurchaseRequisition DocumentType = "PURCHASE_REQUISITION"
	DocumentTypePurchaseOrder       DocumentType = "PURCHASE_ORDER"
	DocumentTypeSalesOrder          DocumentType = "SALES_ORDER"
	DocumentTypeGoodsReceiptNote    DocumentType = "GRN"
	DocumentTypeSalesInvoice        DocumentType = "INVOICE"
	DocumentTypeNCR                 DocumentType = "NCR"
	DocumentTypeDispatch            DocumentType = "DISPATCH"
)

// InvalidTransitionError reports a structurally illegal status change.
type InvalidTransitionError struct {
	DocumentType DocumentType
	From         string
	To           string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Violation() Violation {
	return Violation{Kind: ViolationInvalidTransition, From: e.From, To: e.To}
}

// Per-document transition graphs. An empty set marks the status terminal.
// A status missing from its map has no legal transitions at all (fail closed);
// the same applies to an unknown document type.
//
// SUPERSEDED is written by the revision supersede engine through a bulk
// update, never through this guard, so no status points at it here.

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft:           {QuotationStatusPendingApproval, QuotationStatusCancelled},
	QuotationStatusPendingApproval: {QuotationStatusApproved, QuotationStatusRejected},
	QuotationStatusRejected:        {QuotationStatusDraft},
	QuotationStatusApproved:        {QuotationStatusSent},
	QuotationStatusSent:            {QuotationStatusWon, QuotationStatusLost, QuotationStatusExpired, QuotationStatusRevised},
	QuotationStatusExpired:         {},
	QuotationStatusLost:            {},
	QuotationStatusWon:             {},
	QuotationStatusRevised:         {},
	QuotationStatusSuperseded:      {},
	QuotationStatusCancelled:       {},
}

var purchaseRequisitionTransitions = map[PurchaseRequisitionStatus][]PurchaseRequisitionStatus{
	PurchaseRequisitionStatusDraft:           {PurchaseRequisitionStatusPendingApproval, PurchaseRequisitionStatusCancelled},
	PurchaseRequisitionStatusPendingApproval: {PurchaseRequisitionStatusApproved, PurchaseRequisitionStatusRejected},
	PurchaseRequisitionStatusRejected:        {PurchaseRequisitionStatusDraft},
	PurchaseRequisitionStatusApproved:        {PurchaseRequisitionStatusConverted, PurchaseRequisitionStatusCancelled},
	PurchaseRequisitionStatusConverted:       {},
	PurchaseRequisitionStatusCancelled:       {},
}

var purchaseOrderTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	PurchaseOrderStatusDraft:             {PurchaseOrderStatusOpen, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusOpen:              {PurchaseOrderStatusPartiallyReceived, PurchaseOrderStatusFullyReceived, PurchaseOrderStatusCancelled},
	PurchaseOrderStatusPartiallyReceived: {PurchaseOrderStatusFullyReceived, PurchaseOrderStatusClosed},
	PurchaseOrderStatusFullyReceived:     {PurchaseOrderStatusClosed},
	PurchaseOrderStatusClosed:            {},
	PurchaseOrderStatusCancelled:         {},
}

var salesOrderTransitions = map[SalesOrderStatus][]SalesOrderStatus{
	SalesOrderStatusOpen:                {SalesOrderStatusPartiallyDispatched, SalesOrderStatusFullyDispatched, SalesOrderStatusCancelled},
	SalesOrderStatusPartiallyDispatched: {SalesOrderStatusFullyDispatched},
	SalesOrderStatusFullyDispatched:     {SalesOrderStatusClosed},
	SalesOrderStatusClosed:              {},
	SalesOrderStatusCancelled:           {},
}

var goodsReceiptNoteTransitions = map[GoodsReceiptNoteStatus][]GoodsReceiptNoteStatus{
	GoodsReceiptNoteStatusDraft:           {GoodsReceiptNoteStatusPosted, GoodsReceiptNoteStatusCancelled},
	GoodsReceiptNoteStatusPosted:          {GoodsReceiptNoteStatusUnderInspection},
	GoodsReceiptNoteStatusUnderInspection: {GoodsReceiptNoteStatusQcComplete},
	GoodsReceiptNoteStatusQcComplete:      {},
	GoodsReceiptNoteStatusCancelled:       {},
}

var salesInvoiceTransitions = map[SalesInvoiceStatus][]SalesInvoiceStatus{
	SalesInvoiceStatusDraft:         {SalesInvoiceStatusIssued, SalesInvoiceStatusCancelled},
	SalesInvoiceStatusIssued:        {SalesInvoiceStatusPartiallyPaid, SalesInvoiceStatusPaid, SalesInvoiceStatusCancelled},
	SalesInvoiceStatusPartiallyPaid: {SalesInvoiceStatusPaid},
	SalesInvoiceStatusPaid:          {},
	SalesInvoiceStatusCancelled:     {},
}

var ncrTransitions = map[NCRStatus][]NCRStatus{
	NCRStatusOpen:        {NCRStatusUnderReview},
	NCRStatusUnderReview: {NCRStatusClosed, NCRStatusOpen},
	NCRStatusClosed:      {},
}

var dispatchTransitions = map[DispatchStatus][]DispatchStatus{
	DispatchStatusDraft:      {DispatchStatusDispatched},
	DispatchStatusDispatched: {DispatchStatusDelivered},
	DispatchStatusDelivered:  {},
}

// documentTransitions is the string-keyed registry used by the generic guard
// and the REST surface. The typed maps above stay authoritative; this view is
// derived so the two can never drift.
var documentTransitions = map[DocumentType]map[string][]string{
	DocumentTypeQuotation:           stringGraph(quotationTransitions),
	DocumentTypePurchaseRequisition: stringGraph(purchaseRequisitionTransitions),
	DocumentTypePurchaseOrder:       stringGraph(purchaseOrderTransitions),
	DocumentTypeSalesOrder:          stringGraph(salesOrderTransitions),
	DocumentTypeGoodsReceiptNote:    stringGraph(goodsReceiptNoteTransitions),
	DocumentTypeSalesInvoice:        stringGraph(salesInvoiceTransitions),
	DocumentTypeNCR:                 stringGraph(ncrTransitions),
	DocumentTypeDispatch:            stringGraph(dispatchTransitions),
}

func stringGraph[S ~string](graph map[S][]S) map[string][]string {
	out := make(map[string][]string, len(graph))
	for from, tos := range graph {
		ss := make([]string, 0, len(tos))
		for _, to := range tos {
			ss = append(ss, string(to))
		}
		out[string(from)] = ss
	}
	return out
}

// ValidateTransition answers whether requested is directly reachable from
// current for the given document type. Pure; no side effects.
func ValidateTransition(docType DocumentType, current, requested string) error {
	graph, ok := documentTransitions[docType]
	if !ok {
		return &InvalidTransitionError{DocumentType: docType, From: current, To: requested}
	}
	allowed, ok := graph[current]
	if !ok {
		return &InvalidTransitionError{DocumentType: docType, From: current, To: requested}
	}
	for _, s := range allowed {
		if s == requested {
			return nil
		}
	}
	return &InvalidTransitionError{DocumentType: docType, From: current, To: requested}
}

// AllowedTransitions returns the statuses directly reachable from current.
// Unknown statuses get an empty slice.
func AllowedTransitions(docType DocumentType, current string) []string {
	graph, ok := documentTransitions[docType]
	if !ok {
		return []string{}
	}
	allowed, ok := graph[current]
	if !ok {
		return []string{}
	}
	return allowed
}

// IsTerminalStatus reports whether status is a known status with no outgoing
// transitions. Unknown statuses are not terminal, they are simply unknown;
// both deny everything either way.
func IsTerminalStatus(docType DocumentType, status string) bool {
	graph, ok := documentTransitions[docType]
	if !ok {
		return false
	}
	allowed, ok := graph[status]
	return ok && len(allowed) == 0
}

func ValidateQuotationTransition(current, requested QuotationStatus) error {
	return ValidateTransition(DocumentTypeQuotation, string(current), string(requested))
}

func ValidatePurchaseRequisitionTransition(current, requested PurchaseRequisitionStatus) error {
	return ValidateTransition(DocumentTypePurchaseRequisition, string(current), string(requested))
}

func ValidatePurchaseOrderTransition(current, requested PurchaseOrderStatus) error {
	return ValidateTransition(DocumentTypePurchaseOrder, string(current), string(requested))
}

func ValidateSalesOrderTransition(current, requested SalesOrderStatus) error {
	return ValidateTransition(DocumentTypeSalesOrder, string(current), string(requested))
}

func ValidateGoodsReceiptNoteTransition(current, requested GoodsReceiptNoteStatus) error {
	return ValidateTransition(DocumentTypeGoodsReceiptNote, string(current), string(requested))
}

func ValidateSalesInvoiceTransition(current, requested SalesInvoiceStatus) error {
	return ValidateTransition(DocumentTypeSalesInvoice, string(current), string(requested))
}

func ValidateNCRTransition(current, requested NCRStatus) error {
	return ValidateTransition(DocumentTypeNCR, string(current), string(requested))
}

func ValidateDispatchTransition(current, requested DispatchStatus) error {
	return ValidateTransition(DocumentTypeDispatch, string(current), string(requested))
}
