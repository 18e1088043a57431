package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StockMovementType string

const (
	StockMovementReceipt  StockMovementType = "RECEIPT"
	StockMovementReserve  StockMovementType = "RESERVE"
	StockMovementDispatch StockMovementType = "DISPATCH"
)

// StockMovement is the append-only audit trail of quantity changes on a lot.
// One row per lot per movement; balance_mtr is the lot quantity after the
// movement, so the trail reconstructs without replaying.
type StockMovement struct {
	ID             int               `gorm:"primary_key" json:"id"`
	InventoryLotId int               `gorm:"index;not null" json:"inventory_lot_id"`
	HeatNo         string            `gorm:"size:100;index;not null" json:"heat_no"`
	MovementType   StockMovementType `gorm:"size:20;not null" json:"movement_type"`
	QuantityMtr    decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr"`
	BalanceMtr     decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"balance_mtr"`
	ReferenceType  string            `gorm:"size:50" json:"reference_type"`
	ReferenceId    int               `gorm:"index" json:"reference_id"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

// RecordStockMovement appends one movement row inside the caller's
// transaction.
func RecordStockMovement(tx *gorm.DB, movement StockMovement) error {
	return tx.Create(&movement).Error
}
