package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

// CreateQuotation and CreateQuotationRevision share this validation, so a
// revision cannot smuggle in items a fresh quotation would reject.
func TestNewQuotationItemRules(t *testing.T) {
	item := func(qty, rate int64) NewQuotationItem {
		return NewQuotationItem{
			MaterialSpec: "API 5L Gr.B",
			SizeInch:     "6",
			Schedule:     "40",
			QuantityMtr:  decimal.NewFromInt(qty),
			UnitRate:     decimal.NewFromInt(rate),
		}
	}
	cases := []struct {
		name    string
		items   []NewQuotationItem
		wantErr string
	}{
		{"no items", nil, "quotation must have at least one item"},
		{"zero quantity", []NewQuotationItem{item(0, 90)}, "item quantity must be positive"},
		{"negative rate", []NewQuotationItem{item(500, -1)}, "item unit rate cannot be negative"},
		{"zero rate allowed", []NewQuotationItem{item(500, 0)}, ""},
		{"valid", []NewQuotationItem{item(500, 90)}, ""},
	}
	for _, tc := range cases {
		input := NewQuotation{QuotationNo: "QT-1", CustomerName: "C", Items: tc.items}
		err := input.validate()
		if tc.wantErr == "" && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if tc.wantErr != "" && (err == nil || err.Error() != tc.wantErr) {
			t.Fatalf("%s: got %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}
