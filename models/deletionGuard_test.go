package models

import (
	"strings"
	"testing"
)

func TestCanDeleteQuotationSnapshot(t *testing.T) {
	result := CanDelete(QuotationDeletion{Status: QuotationStatusDraft})
	if !result.IsValid {
		t.Fatalf("draft quotation with no sales orders should be deletable, got %v", result.ErrorMessages())
	}

	result = CanDelete(QuotationDeletion{Status: QuotationStatusApproved})
	if result.IsValid {
		t.Fatal("approved quotation should not be deletable")
	}
	if got := result.ErrorMessages()[0]; got != "cannot delete quotation with status APPROVED" {
		t.Fatalf("unexpected message %q", got)
	}

	result = CanDelete(QuotationDeletion{Status: QuotationStatusApproved, SalesOrderCount: 2})
	if len(result.Errors) != 2 {
		t.Fatalf("both blockers should be reported, got %v", result.ErrorMessages())
	}
	if got := result.ErrorMessages()[1]; got != "quotation is referenced by 2 sales order(s)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCanDeletePurchaseOrderSnapshot(t *testing.T) {
	cases := []struct {
		status    PurchaseOrderStatus
		deletable bool
	}{
		{PurchaseOrderStatusDraft, true},
		{PurchaseOrderStatusCancelled, true},
		{PurchaseOrderStatusOpen, false},
		{PurchaseOrderStatusPartiallyReceived, false},
		{PurchaseOrderStatusFullyReceived, false},
		{PurchaseOrderStatusClosed, false},
	}
	for _, tc := range cases {
		result := CanDelete(PurchaseOrderDeletion{Status: tc.status})
		if result.IsValid != tc.deletable {
			t.Fatalf("status %s: deletable = %v, want %v", tc.status, result.IsValid, tc.deletable)
		}
	}

	result := CanDelete(PurchaseOrderDeletion{Status: PurchaseOrderStatusClosed})
	if len(result.Errors) != 1 {
		t.Fatalf("closed order should report exactly the receipt blocker, got %v", result.ErrorMessages())
	}
	if !strings.Contains(result.ErrorMessages()[0], "material has already been received") {
		t.Fatalf("unexpected message %q", result.ErrorMessages()[0])
	}

	result = CanDelete(PurchaseOrderDeletion{Status: PurchaseOrderStatusPartiallyReceived})
	if len(result.Errors) != 2 {
		t.Fatalf("partially received order trips both rules, got %v", result.ErrorMessages())
	}
}

func TestCanDeleteSalesOrderSnapshot(t *testing.T) {
	result := CanDelete(SalesOrderDeletion{Status: SalesOrderStatusOpen})
	if !result.IsValid {
		t.Fatalf("open sales order with no downstream records should be deletable, got %v", result.ErrorMessages())
	}

	result = CanDelete(SalesOrderDeletion{Status: SalesOrderStatusOpen, PackingListCount: 1, InvoiceCount: 3})
	if len(result.Errors) != 2 {
		t.Fatalf("expected packing list and invoice blockers, got %v", result.ErrorMessages())
	}

	for _, status := range []SalesOrderStatus{SalesOrderStatusClosed, SalesOrderStatusFullyDispatched} {
		result = CanDelete(SalesOrderDeletion{Status: status})
		if result.IsValid {
			t.Fatalf("status %s should block deletion", status)
		}
	}
}

func TestInvoicesAreNeverDeletable(t *testing.T) {
	result := CanDelete(InvoiceDeletion{})
	if result.IsValid {
		t.Fatal("invoice with no payments should still be undeletable")
	}
	if got := result.ErrorMessages()[0]; got != "invoices cannot be deleted once created" {
		t.Fatalf("unexpected message %q", got)
	}

	result = CanDelete(InvoiceDeletion{PaymentReceiptCount: 1})
	if len(result.Errors) != 2 {
		t.Fatalf("payment blocker should stack on top, got %v", result.ErrorMessages())
	}
}

func TestCanDeleteGoodsReceiptNoteSnapshot(t *testing.T) {
	result := CanDelete(GoodsReceiptNoteDeletion{Status: GoodsReceiptNoteStatusDraft})
	if !result.IsValid {
		t.Fatalf("draft GRN with no inspections or lots should be deletable, got %v", result.ErrorMessages())
	}

	// Non-draft GRNs are blocked on status alone, matching the delete path.
	for _, status := range []GoodsReceiptNoteStatus{
		GoodsReceiptNoteStatusPosted,
		GoodsReceiptNoteStatusUnderInspection,
		GoodsReceiptNoteStatusQcComplete,
		GoodsReceiptNoteStatusCancelled,
	} {
		result = CanDelete(GoodsReceiptNoteDeletion{Status: status})
		if result.IsValid {
			t.Fatalf("GRN with status %s should not be deletable", status)
		}
	}

	result = CanDelete(GoodsReceiptNoteDeletion{Status: GoodsReceiptNoteStatusPosted, InspectionCount: 1, InventoryLotCount: 4})
	if len(result.Errors) != 3 {
		t.Fatalf("expected status, inspection and lot blockers, got %v", result.ErrorMessages())
	}
}
