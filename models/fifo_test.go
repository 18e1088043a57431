package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func lot(heatNo string, mtcDate string) InventoryLot {
	d, err := time.Parse("2006-01-02", mtcDate)
	if err != nil {
		panic(err)
	}
	return InventoryLot{
		HeatNo:       heatNo,
		MtcDate:      d,
		MaterialSpec: "API 5L Gr.B",
		QuantityMtr:  decimal.NewFromInt(120),
		Status:       InventoryLotStatusAccepted,
	}
}

func TestFIFOSelectionNoStock(t *testing.T) {
	result := ValidateFIFOSelection(nil, []string{"H-100"})
	if result.IsValid {
		t.Fatal("empty stock should be invalid")
	}
	if len(result.Errors) != 1 || result.ErrorMessages()[0] != "no stock available" {
		t.Fatalf("unexpected errors %v", result.ErrorMessages())
	}
}

func TestFIFOSelectionEmptyRequest(t *testing.T) {
	available := []InventoryLot{lot("H-100", "2026-01-05")}
	result := ValidateFIFOSelection(available, nil)
	if !result.IsValid || len(result.Warnings) != 0 {
		t.Fatalf("empty request against live stock should pass cleanly, got %v / %v",
			result.ErrorMessages(), result.WarningMessages())
	}
}

func TestFIFOSelectionOldestFirstPasses(t *testing.T) {
	available := []InventoryLot{
		lot("H-300", "2026-03-01"),
		lot("H-100", "2026-01-05"),
		lot("H-200", "2026-02-10"),
	}
	result := ValidateFIFOSelection(available, []string{"H-100", "H-200"})
	if !result.IsValid {
		t.Fatalf("oldest-first pick should pass, got %v", result.ErrorMessages())
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("no warning expected, got %v", result.WarningMessages())
	}
}

func TestFIFOSelectionSkippingOlderStockWarns(t *testing.T) {
	available := []InventoryLot{
		lot("H-100", "2026-01-05"),
		lot("H-200", "2026-02-10"),
		lot("H-300", "2026-03-01"),
	}
	result := ValidateFIFOSelection(available, []string{"H-300"})
	if !result.IsValid {
		t.Fatalf("FIFO skip is advisory; result must stay valid, got %v", result.ErrorMessages())
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.WarningMessages())
	}
	warning := result.Warnings[0]
	if warning.Kind != ViolationFIFOOrder {
		t.Fatalf("unexpected warning kind %s", warning.Kind)
	}
	if len(warning.Heats) != 1 || warning.Heats[0] != "H-100" {
		t.Fatalf("warning should name the oldest heat, got %v", warning.Heats)
	}
}

func TestFIFOSelectionRecommendsAsManyHeatsAsRequested(t *testing.T) {
	available := []InventoryLot{
		lot("H-100", "2026-01-05"),
		lot("H-200", "2026-02-10"),
		lot("H-300", "2026-03-01"),
		lot("H-400", "2026-04-01"),
	}
	result := ValidateFIFOSelection(available, []string{"H-100", "H-400"})
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.WarningMessages())
	}
	heats := result.Warnings[0].Heats
	if len(heats) != 2 || heats[0] != "H-100" || heats[1] != "H-200" {
		t.Fatalf("recommendation should be the two oldest heats, got %v", heats)
	}
}

func TestFIFOSelectionTiebreakByHeatNo(t *testing.T) {
	available := []InventoryLot{
		lot("H-BBB", "2026-01-05"),
		lot("H-AAA", "2026-01-05"),
	}
	result := ValidateFIFOSelection(available, []string{"H-BBB"})
	if len(result.Warnings) != 1 {
		t.Fatalf("same-date lots tiebreak on heat number, got %v", result.WarningMessages())
	}
	if heats := result.Warnings[0].Heats; len(heats) != 1 || heats[0] != "H-AAA" {
		t.Fatalf("unexpected recommendation %v", heats)
	}
}

func TestFIFOSelectionDuplicateHeatsInStock(t *testing.T) {
	// Two lots off the same heat count as one pickable heat.
	available := []InventoryLot{
		lot("H-100", "2026-01-05"),
		lot("H-100", "2026-01-06"),
		lot("H-200", "2026-02-10"),
	}
	result := ValidateFIFOSelection(available, []string{"H-100", "H-200"})
	if !result.IsValid || len(result.Warnings) != 0 {
		t.Fatalf("both distinct heats are the oldest pick, got %v / %v",
			result.ErrorMessages(), result.WarningMessages())
	}
}
