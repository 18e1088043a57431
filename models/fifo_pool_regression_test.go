package models_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"github.com/shopspring/decimal"
)

// Regression: FIFO pools are keyed on material spec AND size. A size with no
// accepted stock must report no stock even when the same spec holds lots in
// other sizes, and a heat must never be recommended across sizes.
func TestFIFOPoolIsolatedBySize(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "pipetrade_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	db := config.GetDB()
	mtcDate := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		return d
	}

	older8in := models.InventoryLot{
		GrnLineId:    1,
		HeatNo:       "H-8IN-OLD",
		MtcDate:      mtcDate("2026-01-05"),
		MaterialSpec: "API 5L Gr.B",
		SizeInch:     "8",
		QuantityMtr:  decimal.NewFromInt(300),
		Status:       models.InventoryLotStatusAccepted,
	}
	if err := db.WithContext(ctx).Create(&older8in).Error; err != nil {
		t.Fatalf("create 8in lot: %v", err)
	}

	// Only 8" stock exists: a 6" requirement has an empty pool.
	result := models.ValidateFIFOReservation(ctx, "API 5L Gr.B", "6", []string{"H-6IN-NEW"})
	if result.IsValid {
		t.Fatal("6in pool is empty; result should be invalid")
	}
	if msgs := result.ErrorMessages(); len(msgs) != 1 || msgs[0] != "no stock available" {
		t.Fatalf("expected the single no-stock error, got %v", msgs)
	}

	newer6in := models.InventoryLot{
		GrnLineId:    2,
		HeatNo:       "H-6IN-NEW",
		MtcDate:      mtcDate("2026-03-01"),
		MaterialSpec: "API 5L Gr.B",
		SizeInch:     "6",
		QuantityMtr:  decimal.NewFromInt(120),
		Status:       models.InventoryLotStatusAccepted,
	}
	if err := db.WithContext(ctx).Create(&newer6in).Error; err != nil {
		t.Fatalf("create 6in lot: %v", err)
	}

	// The 6" heat is the oldest in its own pool; the older 8" heat must not
	// leak in as a recommendation.
	result = models.ValidateFIFOReservation(ctx, "API 5L Gr.B", "6", []string{"H-6IN-NEW"})
	if !result.IsValid {
		t.Fatalf("6in pick should pass, got %v", result.ErrorMessages())
	}
	if msgs := result.WarningMessages(); len(msgs) != 0 {
		t.Fatalf("no cross-size warning expected, got %v", msgs)
	}

	lots, err := models.AvailableLotsFIFO(ctx, "API 5L Gr.B", "8")
	if err != nil {
		t.Fatalf("AvailableLotsFIFO: %v", err)
	}
	if len(lots) != 1 || lots[0].HeatNo != "H-8IN-OLD" {
		t.Fatalf("8in pool should hold exactly the 8in lot, got %+v", lots)
	}
	for _, lot := range lots {
		if lot.SizeInch != "8" {
			t.Fatalf("lot %s with size %s leaked into the 8in pool", lot.HeatNo, lot.SizeInch)
		}
	}
}
