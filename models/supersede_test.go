package models

import "testing"

func revision(id int, status QuotationStatus) Quotation {
	return Quotation{ID: id, QuotationNo: "QT-2026-014", Version: id, Status: status}
}

func TestSupersedeTargetsPicksLiveSiblings(t *testing.T) {
	family := []Quotation{
		revision(1, QuotationStatusRevised),
		revision(2, QuotationStatusExpired),
		revision(3, QuotationStatusSent),
		revision(4, QuotationStatusApproved),
		revision(5, QuotationStatusWon),
	}
	targets := SupersedeTargets(family, 5)
	want := map[int]bool{1: true, 2: true, 3: true, 4: true}
	if len(targets) != len(want) {
		t.Fatalf("got targets %v", targets)
	}
	for _, id := range targets {
		if !want[id] {
			t.Fatalf("unexpected target %d", id)
		}
	}
}

func TestSupersedeTargetsExcludesWinner(t *testing.T) {
	family := []Quotation{
		revision(1, QuotationStatusSent),
		revision(2, QuotationStatusSent),
	}
	for _, id := range SupersedeTargets(family, 2) {
		if id == 2 {
			t.Fatal("winning revision must never supersede itself")
		}
	}
}

func TestSupersedeTargetsLeavesDeadRevisionsAlone(t *testing.T) {
	family := []Quotation{
		revision(1, QuotationStatusDraft),
		revision(2, QuotationStatusLost),
		revision(3, QuotationStatusCancelled),
		revision(4, QuotationStatusRejected),
		revision(5, QuotationStatusWon),
	}
	if targets := SupersedeTargets(family, 5); len(targets) != 0 {
		t.Fatalf("dead revisions must not be superseded, got %v", targets)
	}
}

func TestQuotationStatusInputRules(t *testing.T) {
	cases := []struct {
		name    string
		input   UpdateStatusQuotationInput
		wantErr string
	}{
		{"reject without remarks",
			UpdateStatusQuotationInput{Status: QuotationStatusRejected},
			"remarks are required when rejecting a quotation"},
		{"reject with remarks",
			UpdateStatusQuotationInput{Status: QuotationStatusRejected, Remarks: "pricing out of range"},
			""},
		{"lost without reason",
			UpdateStatusQuotationInput{Status: QuotationStatusLost},
			"a reason is required when marking a quotation as lost"},
		{"lost with reason",
			UpdateStatusQuotationInput{Status: QuotationStatusLost, LostReason: "competitor price"},
			""},
		{"sent needs nothing",
			UpdateStatusQuotationInput{Status: QuotationStatusSent},
			""},
	}
	for _, tc := range cases {
		err := validateQuotationStatusInput(tc.input)
		if tc.wantErr == "" && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.wantErr != "" && (err == nil || err.Error() != tc.wantErr) {
			t.Fatalf("%s: got %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestSupersedeTargetsIdempotent(t *testing.T) {
	// A family that already went through supersede yields nothing on a rerun.
	family := []Quotation{
		revision(1, QuotationStatusSuperseded),
		revision(2, QuotationStatusSuperseded),
		revision(3, QuotationStatusWon),
	}
	if targets := SupersedeTargets(family, 3); len(targets) != 0 {
		t.Fatalf("second pass should be a no-op, got %v", targets)
	}
}
