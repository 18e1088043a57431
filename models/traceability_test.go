package models

import "testing"

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestSalesOrderTrace(t *testing.T) {
	result := ValidateTrace(SalesOrderTrace{})
	if result.IsValid {
		t.Fatal("sales order with neither reference should fail")
	}
	if got := result.ErrorMessages()[0]; got != "sales order must reference a quotation or a customer po number" {
		t.Fatalf("unexpected message %q", got)
	}

	result = ValidateTrace(SalesOrderTrace{CustomerPoNo: strPtr("CUST-PO-88")})
	if !result.IsValid {
		t.Fatalf("customer PO alone should satisfy the trace, got %v", result.ErrorMessages())
	}

	result = ValidateTrace(SalesOrderTrace{QuotationId: intPtr(7)})
	if result.IsValid {
		t.Fatal("referenced quotation that does not exist should fail")
	}
	if got := result.ErrorMessages()[0]; got != "quotation not found" {
		t.Fatalf("unexpected message %q", got)
	}

	for _, status := range []QuotationStatus{QuotationStatusApproved, QuotationStatusSent} {
		result = ValidateTrace(SalesOrderTrace{
			QuotationId: intPtr(7),
			Quotation:   &Quotation{ID: 7, Status: status},
		})
		if !result.IsValid {
			t.Fatalf("quotation in %s should be referenceable, got %v", status, result.ErrorMessages())
		}
	}

	result = ValidateTrace(SalesOrderTrace{
		QuotationId: intPtr(7),
		Quotation:   &Quotation{ID: 7, Status: QuotationStatusDraft},
	})
	if result.IsValid {
		t.Fatal("draft quotation should not be referenceable")
	}
	if got := result.ErrorMessages()[0]; got != "quotation is in status DRAFT; expected APPROVED or SENT" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestPurchaseOrderTraceIsOptional(t *testing.T) {
	if result := ValidateTrace(PurchaseOrderTrace{}); !result.IsValid {
		t.Fatalf("purchase order without a requisition should pass, got %v", result.ErrorMessages())
	}

	result := ValidateTrace(PurchaseOrderTrace{RequisitionId: intPtr(3)})
	if result.IsValid {
		t.Fatal("missing requisition should fail")
	}

	result = ValidateTrace(PurchaseOrderTrace{
		RequisitionId: intPtr(3),
		Requisition:   &PurchaseRequisition{ID: 3, Status: PurchaseRequisitionStatusPendingApproval},
	})
	if result.IsValid {
		t.Fatal("requisition not yet approved should fail")
	}
	if got := result.ErrorMessages()[0]; got != "purchase requisition is in status PENDING_APPROVAL; expected APPROVED" {
		t.Fatalf("unexpected message %q", got)
	}

	result = ValidateTrace(PurchaseOrderTrace{
		RequisitionId: intPtr(3),
		Requisition:   &PurchaseRequisition{ID: 3, Status: PurchaseRequisitionStatusApproved},
	})
	if !result.IsValid {
		t.Fatalf("approved requisition should pass, got %v", result.ErrorMessages())
	}
}

func TestGoodsReceiptTrace(t *testing.T) {
	result := ValidateTrace(GoodsReceiptTrace{})
	if result.IsValid {
		t.Fatal("GRN without a purchase order should fail")
	}
	if got := result.ErrorMessages()[0]; got != "goods receipt note must reference a purchase order" {
		t.Fatalf("unexpected message %q", got)
	}

	for _, status := range []PurchaseOrderStatus{PurchaseOrderStatusDraft, PurchaseOrderStatusCancelled} {
		result = ValidateTrace(GoodsReceiptTrace{
			PurchaseOrderId: intPtr(4),
			PurchaseOrder:   &PurchaseOrder{ID: 4, Status: status},
		})
		if result.IsValid {
			t.Fatalf("purchase order in %s should not receive goods", status)
		}
	}

	result = ValidateTrace(GoodsReceiptTrace{
		PurchaseOrderId: intPtr(4),
		PurchaseOrder:   &PurchaseOrder{ID: 4, Status: PurchaseOrderStatusOpen},
	})
	if !result.IsValid {
		t.Fatalf("open purchase order should receive goods, got %v", result.ErrorMessages())
	}
}

func TestDispatchTrace(t *testing.T) {
	result := ValidateTrace(DispatchTrace{})
	if result.IsValid {
		t.Fatal("dispatch without a sales order should fail")
	}

	result = ValidateTrace(DispatchTrace{SalesOrderId: intPtr(9)})
	if result.IsValid {
		t.Fatal("missing sales order should fail")
	}

	result = ValidateTrace(DispatchTrace{
		SalesOrderId: intPtr(9),
		SalesOrder:   &SalesOrder{ID: 9, Status: SalesOrderStatusOpen},
	})
	if !result.IsValid {
		t.Fatalf("existing sales order should pass, got %v", result.ErrorMessages())
	}
}
