package models

import "github.com/shopspring/decimal"

// ApprovalConfig carries the per-document approval thresholds. It is passed
// explicitly by callers; there is no mutable package-level configuration.
type ApprovalConfig struct {
	QuotationThreshold           decimal.Decimal
	PurchaseOrderThreshold       decimal.Decimal
	PurchaseRequisitionThreshold decimal.Decimal
}

// DefaultApprovalConfig returns the system defaults:
// quotations above 100,000, purchase orders above 500,000 and purchase
// requisitions above 200,000 require management approval.
func DefaultApprovalConfig() ApprovalConfig {
	return ApprovalConfig{
		QuotationThreshold:           decimal.NewFromInt(100000),
		PurchaseOrderThreshold:       decimal.NewFromInt(500000),
		PurchaseRequisitionThreshold: decimal.NewFromInt(200000),
	}
}

// RequiresApproval decides whether a document's monetary value needs
// management approval before it can progress. Strictly greater-than: an
// amount exactly at the threshold does not require approval. Unknown document
// types never require approval. Pass cfg nil for the defaults.
func RequiresApproval(docType DocumentType, amount decimal.Decimal, cfg *ApprovalConfig) bool {
	c := DefaultApprovalConfig()
	if cfg != nil {
		c = *cfg
	}
	switch docType {
	case DocumentTypeQuotation:
		return amount.GreaterThan(c.QuotationThreshold)
	case DocumentTypePurchaseOrder:
		return amount.GreaterThan(c.PurchaseOrderThreshold)
	case DocumentTypePurchaseRequisition:
		return amount.GreaterThan(c.PurchaseRequisitionThreshold)
	default:
		return false
	}
}
