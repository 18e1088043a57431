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

type PaymentReceipt struct {
	ID             int             `gorm:"primary_key" json:"id"`
	ReceiptNo      string          `gorm:"size:100;uniqueIndex;not null" json:"receipt_no" binding:"required"`
	SalesInvoiceId int             `gorm:"index;not null" json:"sales_invoice_id" binding:"required"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount" binding:"required"`
	PaymentMode    string          `gorm:"size:50" json:"payment_mode"`
	ReceivedAt     time.Time       `gorm:"not null" json:"received_at"`
	Remarks        string          `gorm:"type:text" json:"remarks"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewPaymentReceipt struct {
	ReceiptNo      string          `json:"receipt_no" binding:"required"`
	SalesInvoiceId int             `json:"sales_invoice_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	PaymentMode    string          `json:"payment_mode"`
	ReceivedAt     *time.Time      `json:"received_at"`
	Remarks        string          `json:"remarks"`
}

// CreatePaymentReceipt records money against an issued invoice and derives
// the invoice's payment status from the running paid total, all in one
// transaction.
func CreatePaymentReceipt(ctx context.Context, input *NewPaymentReceipt) (*PaymentReceipt, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[PaymentReceipt](ctx, "receipt_no", input.ReceiptNo); err != nil {
		return nil, err
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("payment amount must be positive")
	}
	invoice, err := utils.FetchModel[SalesInvoice](ctx, input.SalesInvoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.Status != SalesInvoiceStatusIssued && invoice.Status != SalesInvoiceStatusPartiallyPaid {
		return nil, fmt.Errorf("cannot record payment against an invoice with status %s", invoice.Status)
	}

	newPaid := invoice.PaidAmount.Add(input.Amount)
	if newPaid.GreaterThan(invoice.TotalAmount) {
		return nil, errors.New("payment exceeds the invoice balance")
	}
	target := SalesInvoiceStatusPartiallyPaid
	if newPaid.Equal(invoice.TotalAmount) {
		target = SalesInvoiceStatusPaid
	}
	if target != invoice.Status {
		if err := ValidateSalesInvoiceTransition(invoice.Status, target); err != nil {
			return nil, err
		}
	}

	receivedAt := time.Now()
	if input.ReceivedAt != nil {
		receivedAt = *input.ReceivedAt
	}
	receipt := PaymentReceipt{
		ReceiptNo:      input.ReceiptNo,
		SalesInvoiceId: input.SalesInvoiceId,
		Amount:         input.Amount,
		PaymentMode:    input.PaymentMode,
		ReceivedAt:     receivedAt,
		Remarks:        input.Remarks,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&receipt).Error; err != nil {
		config.LogError(logger, "paymentReceipt.go", "CreatePaymentReceipt", "create", input.ReceiptNo, err)
		return nil, errors.New("cannot record payment receipt")
	}
	if err := tx.Model(&SalesInvoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
		"paid_amount": newPaid,
		"status":      target,
	}).Error; err != nil {
		config.LogError(logger, "paymentReceipt.go", "CreatePaymentReceipt", "update invoice", invoice.ID, err)
		return nil, errors.New("cannot record payment receipt")
	}
	description := fmt.Sprintf("Receipt %s recorded against invoice %s; invoice now %s.",
		receipt.ReceiptNo, invoice.InvoiceNo, target)
	if err := createHistory(tx, "CREATE", receipt.ID, "payment_receipts", nil, receipt, description); err != nil {
		config.LogError(logger, "paymentReceipt.go", "CreatePaymentReceipt", "history", receipt.ID, err)
		return nil, errors.New("cannot record payment receipt")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "paymentReceipt.go", "CreatePaymentReceipt", "commit", receipt.ID, err)
		return nil, errors.New("cannot record payment receipt")
	}
	return &receipt, nil
}
