package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesInvoice struct {
	ID           int                `gorm:"primary_key" json:"id"`
	InvoiceNo    string             `gorm:"size:100;uniqueIndex;not null" json:"invoice_no" binding:"required"`
	SalesOrderId *int               `gorm:"index" json:"sales_order_id"`
	CustomerName string             `gorm:"size:255;not null" json:"customer_name" binding:"required"`
	Status       SalesInvoiceStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	TotalAmount  decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount   decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	Remarks      string             `gorm:"type:text" json:"remarks"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSalesInvoice struct {
	InvoiceNo    string          `json:"invoice_no" binding:"required"`
	SalesOrderId *int            `json:"sales_order_id" binding:"required"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount" binding:"required"`
	Remarks      string          `json:"remarks"`
}

func CreateSalesInvoice(ctx context.Context, input *NewSalesInvoice) (*SalesInvoice, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[SalesInvoice](ctx, "invoice_no", input.InvoiceNo); err != nil {
		return nil, err
	}
	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("invoice amount must be positive")
	}
	if input.SalesOrderId == nil || *input.SalesOrderId <= 0 {
		return nil, errors.New("sales invoice must reference a sales order")
	}
	so, err := utils.FetchModel[SalesOrder](ctx, *input.SalesOrderId)
	if err != nil {
		return nil, err
	}

	customerName := input.CustomerName
	if customerName == "" {
		customerName = so.CustomerName
	}
	invoice := SalesInvoice{
		InvoiceNo:    input.InvoiceNo,
		SalesOrderId: input.SalesOrderId,
		CustomerName: customerName,
		Status:       SalesInvoiceStatusDraft,
		TotalAmount:  input.TotalAmount,
		Remarks:      input.Remarks,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&invoice).Error; err != nil {
		config.LogError(logger, "invoice.go", "CreateSalesInvoice", "create", input.InvoiceNo, err)
		return nil, errors.New("cannot create invoice")
	}
	description := fmt.Sprintf("Invoice %s created against %s.", invoice.InvoiceNo, so.SoNo)
	if err := createHistory(tx, "CREATE", invoice.ID, "sales_invoices", nil, invoice, description); err != nil {
		config.LogError(logger, "invoice.go", "CreateSalesInvoice", "history", invoice.ID, err)
		return nil, errors.New("cannot create invoice")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "invoice.go", "CreateSalesInvoice", "commit", invoice.ID, err)
		return nil, errors.New("cannot create invoice")
	}
	return &invoice, nil
}

func UpdateStatusSalesInvoice(ctx context.Context, id int, newStatus SalesInvoiceStatus) (*SalesInvoice, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	invoice, err := utils.FetchModel[SalesInvoice](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateSalesInvoiceTransition(invoice.Status, newStatus); err != nil {
		return nil, err
	}
	// Payment statuses are derived from receipts, not set by hand.
	if newStatus == SalesInvoiceStatusPartiallyPaid || newStatus == SalesInvoiceStatusPaid {
		return nil, errors.New("payment statuses are set by recording payment receipts")
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *invoice
	if err := tx.Model(&SalesInvoice{}).Where("id = ?", id).Update("status", newStatus).Error; err != nil {
		config.LogError(logger, "invoice.go", "UpdateStatusSalesInvoice", "update status", id, err)
		return nil, errors.New("cannot update invoice status")
	}
	invoice.Status = newStatus
	description := fmt.Sprintf("Invoice %s status changed to %s.", invoice.InvoiceNo, newStatus)
	if err := createHistory(tx, "UPDATE", invoice.ID, "sales_invoices", before, invoice, description); err != nil {
		config.LogError(logger, "invoice.go", "UpdateStatusSalesInvoice", "history", id, err)
		return nil, errors.New("cannot update invoice status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "invoice.go", "UpdateStatusSalesInvoice", "commit", id, err)
		return nil, errors.New("cannot update invoice status")
	}
	return invoice, nil
}

// DeleteSalesInvoice always refuses; the guard exists so callers get the full
// list of reasons rather than a bare no.
// DeleteSalesInvoice always refuses; a missing invoice surfaces as not-found
// rather than a deletion violation so the API can map it to 404.
func DeleteSalesInvoice(ctx context.Context, id int) error {
	if _, err := utils.FetchModel[SalesInvoice](ctx, id); err != nil {
		return err
	}
	result := CanDeleteSalesInvoice(ctx, id)
	return errors.New(result.ErrorMessages()[0])
}
