package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRequiresApprovalDefaults(t *testing.T) {
	cases := []struct {
		docType DocumentType
		amount  int64
		want    bool
	}{
		{DocumentTypeQuotation, 100000, false},
		{DocumentTypeQuotation, 100001, true},
		{DocumentTypeQuotation, 50000, false},
		{DocumentTypePurchaseOrder, 500000, false},
		{DocumentTypePurchaseOrder, 500001, true},
		{DocumentTypePurchaseRequisition, 200000, false},
		{DocumentTypePurchaseRequisition, 200001, true},
	}
	for _, tc := range cases {
		got := RequiresApproval(tc.docType, decimal.NewFromInt(tc.amount), nil)
		if got != tc.want {
			t.Fatalf("RequiresApproval(%s, %d) = %v, want %v", tc.docType, tc.amount, got, tc.want)
		}
	}
}

func TestRequiresApprovalFractionalAmount(t *testing.T) {
	amount := decimal.NewFromFloat(100000.01)
	if !RequiresApproval(DocumentTypeQuotation, amount, nil) {
		t.Fatal("100000.01 should require approval")
	}
}

func TestRequiresApprovalCustomConfig(t *testing.T) {
	cfg := ApprovalConfig{
		QuotationThreshold:           decimal.NewFromInt(10),
		PurchaseOrderThreshold:       decimal.NewFromInt(20),
		PurchaseRequisitionThreshold: decimal.NewFromInt(30),
	}
	if !RequiresApproval(DocumentTypeQuotation, decimal.NewFromInt(11), &cfg) {
		t.Fatal("custom quotation threshold not applied")
	}
	if RequiresApproval(DocumentTypePurchaseOrder, decimal.NewFromInt(20), &cfg) {
		t.Fatal("amount at the threshold should not require approval")
	}
	if !RequiresApproval(DocumentTypePurchaseRequisition, decimal.NewFromInt(31), &cfg) {
		t.Fatal("custom requisition threshold not applied")
	}
}

func TestRequiresApprovalUnknownType(t *testing.T) {
	if RequiresApproval(DocumentTypeSalesOrder, decimal.NewFromInt(9000000), nil) {
		t.Fatal("sales orders have no approval threshold")
	}
	if RequiresApproval(DocumentType("TIMESHEET"), decimal.NewFromInt(9000000), nil) {
		t.Fatal("unknown document types never require approval")
	}
}
