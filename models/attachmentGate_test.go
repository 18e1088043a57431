package models

import "testing"

func TestGRNAttachmentGate(t *testing.T) {
	grn := GoodsReceiptNote{MtcNo: "MTC-778", MtcDocumentPath: "docs/mtc-778.pdf"}
	if result := ValidateAttachments(grn); !result.IsValid {
		t.Fatalf("complete GRN should pass, got %v", result.ErrorMessages())
	}

	grn = GoodsReceiptNote{}
	result := ValidateAttachments(grn)
	if result.IsValid {
		t.Fatal("GRN without MTC should fail")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("both missing fields should be reported, got %v", result.ErrorMessages())
	}
	if got := result.ErrorMessages()[0]; got != "mtc no is required" {
		t.Fatalf("unexpected message %q", got)
	}

	grn = GoodsReceiptNote{MtcNo: "MTC-778"}
	result = ValidateAttachments(grn)
	if len(result.Errors) != 1 || result.ErrorMessages()[0] != "mtc document is required" {
		t.Fatalf("only the document should be missing, got %v", result.ErrorMessages())
	}
}

func TestInspectionAttachmentGate(t *testing.T) {
	cases := []struct {
		name       string
		result     InspectionResult
		reportPath string
		valid      bool
	}{
		{"pending without report", InspectionResultPending, "", true},
		{"hold without report", InspectionResultHold, "", true},
		{"pass without report", InspectionResultPass, "", false},
		{"fail without report", InspectionResultFail, "", false},
		{"pass with report", InspectionResultPass, "reports/insp-1.pdf", true},
		{"fail with report", InspectionResultFail, "reports/insp-2.pdf", true},
	}
	for _, tc := range cases {
		insp := Inspection{OverallResult: tc.result, ReportPath: tc.reportPath}
		got := ValidateAttachments(insp)
		if got.IsValid != tc.valid {
			t.Fatalf("%s: IsValid = %v, want %v", tc.name, got.IsValid, tc.valid)
		}
	}
}

func TestNCRAttachmentGate(t *testing.T) {
	ncr := NCR{}
	result := ValidateAttachments(ncr)
	if result.IsValid {
		t.Fatal("NCR without evidence should fail")
	}
	if got := result.ErrorMessages()[0]; got != "evidence is required" {
		t.Fatalf("unexpected message %q", got)
	}

	ncr = NCR{EvidencePaths: StringList{"photos/dent.jpg"}}
	if result := ValidateAttachments(ncr); !result.IsValid {
		t.Fatalf("NCR with evidence should pass, got %v", result.ErrorMessages())
	}
}
