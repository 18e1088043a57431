package models_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/shopspring/decimal"
)

// Regression: deleting a missing invoice must surface as not-found (the API
// maps it to 404), not as a deletion violation; deleting an existing invoice
// is always refused.
func TestDeleteSalesInvoiceNotFoundVsRefused(t *testing.T) {
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

	if err := models.DeleteSalesInvoice(ctx, 424242); err != utils.ErrorRecordNotFound {
		t.Fatalf("missing invoice: got %v, want ErrorRecordNotFound", err)
	}

	invoice := models.SalesInvoice{
		InvoiceNo:    "INV-IT-001",
		CustomerName: "Hydrocarbon Projects Ltd",
		Status:       models.SalesInvoiceStatusIssued,
		TotalAmount:  decimal.NewFromInt(45000),
	}
	if err := config.GetDB().WithContext(ctx).Create(&invoice).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	err := models.DeleteSalesInvoice(ctx, invoice.ID)
	if err == nil {
		t.Fatal("existing invoice must never be deletable")
	}
	if err.Error() != "invoices cannot be deleted once created" {
		t.Fatalf("unexpected refusal %q", err.Error())
	}
}
