package models

import (
	"testing"
)

func TestQuotationTransitions(t *testing.T) {
	cases := []struct {
		from    QuotationStatus
		to      QuotationStatus
		allowed bool
	}{
		{QuotationStatusDraft, QuotationStatusPendingApproval, true},
		{QuotationStatusDraft, QuotationStatusCancelled, true},
		{QuotationStatusDraft, QuotationStatusSent, false},
		{QuotationStatusDraft, QuotationStatusWon, false},
		{QuotationStatusPendingApproval, QuotationStatusApproved, true},
		{QuotationStatusPendingApproval, QuotationStatusRejected, true},
		{QuotationStatusPendingApproval, QuotationStatusCancelled, false},
		{QuotationStatusRejected, QuotationStatusDraft, true},
		{QuotationStatusApproved, QuotationStatusSent, true},
		{QuotationStatusApproved, QuotationStatusWon, false},
		{QuotationStatusSent, QuotationStatusWon, true},
		{QuotationStatusSent, QuotationStatusLost, true},
		{QuotationStatusSent, QuotationStatusExpired, true},
		{QuotationStatusSent, QuotationStatusRevised, true},
		{QuotationStatusWon, QuotationStatusLost, false},
		{QuotationStatusExpired, QuotationStatusSent, false},
		{QuotationStatusSuperseded, QuotationStatusDraft, false},
	}
	for _, tc := range cases {
		err := ValidateQuotationTransition(tc.from, tc.to)
		if tc.allowed && err != nil {
			t.Fatalf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.allowed && err == nil {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestTransitionRejectsSkippingStates(t *testing.T) {
	if err := ValidateGoodsReceiptNoteTransition(GoodsReceiptNoteStatusDraft, GoodsReceiptNoteStatusQcComplete); err == nil {
		t.Fatal("DRAFT -> QC_COMPLETE should be rejected")
	}
	if err := ValidateSalesInvoiceTransition(SalesInvoiceStatusDraft, SalesInvoiceStatusPaid); err == nil {
		t.Fatal("DRAFT -> PAID should be rejected")
	}
	if err := ValidatePurchaseOrderTransition(PurchaseOrderStatusDraft, PurchaseOrderStatusFullyReceived); err == nil {
		t.Fatal("DRAFT -> FULLY_RECEIVED should be rejected")
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := ValidateQuotationTransition(QuotationStatusWon, QuotationStatusLost)
	if err == nil {
		t.Fatal("expected error")
	}
	want := "cannot change status from WON to LOST"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestValidateTransitionFailsClosed(t *testing.T) {
	if err := ValidateTransition(DocumentType("SHIPPING_MANIFEST"), "DRAFT", "OPEN"); err == nil {
		t.Fatal("unknown document type should be rejected")
	}
	if err := ValidateTransition(DocumentTypeQuotation, "SOMETHING", "DRAFT"); err == nil {
		t.Fatal("unknown current status should be rejected")
	}
	if err := ValidateTransition(DocumentTypeQuotation, string(QuotationStatusDraft), "SOMETHING"); err == nil {
		t.Fatal("unknown target status should be rejected")
	}
}

func TestTerminalStatuses(t *testing.T) {
	cases := []struct {
		docType  DocumentType
		status   string
		terminal bool
	}{
		{DocumentTypeQuotation, "WON", true},
		{DocumentTypeQuotation, "LOST", true},
		{DocumentTypeQuotation, "EXPIRED", true},
		{DocumentTypeQuotation, "SUPERSEDED", true},
		{DocumentTypeQuotation, "CANCELLED", true},
		{DocumentTypeQuotation, "SENT", false},
		{DocumentTypeQuotation, "DRAFT", false},
		{DocumentTypePurchaseRequisition, "CONVERTED", true},
		{DocumentTypePurchaseOrder, "CLOSED", true},
		{DocumentTypePurchaseOrder, "OPEN", false},
		{DocumentTypeSalesOrder, "CLOSED", true},
		{DocumentTypeGoodsReceiptNote, "QC_COMPLETE", true},
		{DocumentTypeSalesInvoice, "PAID", true},
		{DocumentTypeNCR, "CLOSED", true},
		{DocumentTypeNCR, "UNDER_REVIEW", false},
		{DocumentTypeDispatch, "DELIVERED", true},
	}
	for _, tc := range cases {
		if got := IsTerminalStatus(tc.docType, tc.status); got != tc.terminal {
			t.Fatalf("IsTerminalStatus(%s, %s) = %v, want %v", tc.docType, tc.status, got, tc.terminal)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	allowed := AllowedTransitions(DocumentTypeQuotation, "SENT")
	want := map[string]bool{"WON": true, "LOST": true, "EXPIRED": true, "REVISED": true}
	if len(allowed) != len(want) {
		t.Fatalf("got %v", allowed)
	}
	for _, s := range allowed {
		if !want[s] {
			t.Fatalf("unexpected transition %s", s)
		}
	}
	if got := AllowedTransitions(DocumentTypeQuotation, "NOPE"); len(got) != 0 {
		t.Fatalf("unknown status should yield no transitions, got %v", got)
	}
}
