package models

import (
	"encoding/json"
	"testing"
)

func TestValidationResultAccumulates(t *testing.T) {
	result := ValidResult()
	if !result.IsValid {
		t.Fatal("fresh result should be valid")
	}

	result.AddWarning(Violation{Kind: ViolationFIFOOrder, Heats: []string{"H-1"}})
	if !result.IsValid {
		t.Fatal("warnings must not flip validity")
	}

	result.AddError(Violation{Kind: ViolationMissingField, Field: "mtc no"})
	result.AddError(Violation{Kind: ViolationNotFound, Entity: "quotation"})
	if result.IsValid {
		t.Fatal("errors must flip validity")
	}
	if len(result.Errors) != 2 || len(result.Warnings) != 1 {
		t.Fatalf("got %d errors, %d warnings", len(result.Errors), len(result.Warnings))
	}
}

func TestViolationMessages(t *testing.T) {
	cases := []struct {
		violation Violation
		want      string
	}{
		{Violation{Kind: ViolationInvalidTransition, From: "DRAFT", To: "WON"},
			"cannot change status from DRAFT to WON"},
		{Violation{Kind: ViolationMissingField, Field: "remarks", Entity: "quotation", Status: "REJECTED"},
			"remarks is required when marking quotation as REJECTED"},
		{Violation{Kind: ViolationNotFound},
			"record not found"},
		{Violation{Kind: ViolationLinkedRecords, Entity: "sales order", Count: 2, Field: "invoice(s)"},
			"sales order is referenced by 2 invoice(s)"},
		{Violation{Kind: ViolationUpstreamStatus, Entity: "quotation", Status: "DRAFT", Expected: []string{"APPROVED", "SENT"}},
			"quotation is in status DRAFT; expected APPROVED or SENT"},
		{Violation{Kind: ViolationStatusBlocked, Entity: "purchase order", Status: "CLOSED", Detail: "material has already been received against it"},
			"cannot delete purchase order with status CLOSED; material has already been received against it"},
	}
	for _, tc := range cases {
		if got := tc.violation.Message(); got != tc.want {
			t.Fatalf("got %q, want %q", got, tc.want)
		}
	}
}

func TestValidationResultJSON(t *testing.T) {
	result := ValidResult()
	b, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"is_valid":true,"errors":[]}` {
		t.Fatalf("unexpected JSON %s", b)
	}

	result.AddError(Violation{Kind: ViolationNoStock})
	result.AddWarning(Violation{Kind: ViolationFIFOOrder, Heats: []string{"H-1"}})
	b, err = json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		IsValid  bool     `json:"is_valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.IsValid || len(decoded.Errors) != 1 || len(decoded.Warnings) != 1 {
		t.Fatalf("unexpected decode %+v", decoded)
	}
	if decoded.Errors[0] != "no stock available" {
		t.Fatalf("unexpected error rendering %q", decoded.Errors[0])
	}
}

func TestSystemErrorResultFailsClosed(t *testing.T) {
	result := SystemErrorResult()
	if result.IsValid {
		t.Fatal("system errors must deny the operation")
	}
	if result.ErrorMessages()[0] != "validation check failed due to system error" {
		t.Fatalf("unexpected message %q", result.ErrorMessages()[0])
	}
}
