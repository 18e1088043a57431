package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesOrder struct {
	ID           int              `gorm:"primary_key" json:"id"`
	SoNo         string           `gorm:"size:100;uniqueIndex;not null" json:"so_no" binding:"required"`
	CustomerName string           `gorm:"size:255;not null" json:"customer_name" binding:"required"`
	QuotationId  *int             `gorm:"index" json:"quotation_id"`
	CustomerPoNo *string          `gorm:"size:100" json:"customer_po_no"`
	Status       SalesOrderStatus `gorm:"size:25;index;default:'OPEN'" json:"status"`
	Remarks      string           `gorm:"type:text" json:"remarks"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items        []SalesOrderItem `gorm:"foreignKey:SalesOrderId" json:"items"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type SalesOrderItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SalesOrderId  int             `gorm:"index;not null" json:"sales_order_id"`
	MaterialSpec  string          `gorm:"size:100;not null" json:"material_spec" binding:"required"`
	SizeInch      string          `gorm:"size:50" json:"size_inch"`
	Schedule      string          `gorm:"size:50" json:"schedule"`
	QuantityMtr   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
	DispatchedMtr decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"dispatched_mtr"`
	UnitRate      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_rate" binding:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type NewSalesOrder struct {
	SoNo         string              `json:"so_no" binding:"required"`
	CustomerName string              `json:"customer_name" binding:"required"`
	QuotationId  *int                `json:"quotation_id"`
	CustomerPoNo *string             `json:"customer_po_no"`
	Remarks      string              `json:"remarks"`
	Items        []NewSalesOrderItem `json:"items" binding:"required"`
}

type NewSalesOrderItem struct {
	MaterialSpec string          `json:"material_spec" binding:"required"`
	SizeInch     string          `json:"size_inch"`
	Schedule     string          `json:"schedule"`
	QuantityMtr  decimal.Decimal `json:"quantity_mtr" binding:"required"`
	UnitRate     decimal.Decimal `json:"unit_rate" binding:"required"`
}

func CreateSalesOrder(ctx context.Context, input *NewSalesOrder) (*SalesOrder, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if len(input.Items) == 0 {
		return nil, errors.New("sales order must have at least one item")
	}
	if err := utils.ValidateUnique[SalesOrder](ctx, "so_no", input.SoNo); err != nil {
		return nil, err
	}
	if trace := ValidateSalesOrderTraceability(ctx, input.QuotationId, input.CustomerPoNo); !trace.IsValid {
		return nil, errors.New(trace.ErrorMessages()[0])
	}

	total := decimal.Zero
	items := make([]SalesOrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("item quantity must be positive")
		}
		amount := item.QuantityMtr.Mul(item.UnitRate)
		total = total.Add(amount)
		items = append(items, SalesOrderItem{
			MaterialSpec: item.MaterialSpec,
			SizeInch:     item.SizeInch,
			Schedule:     item.Schedule,
			QuantityMtr:  item.QuantityMtr,
			UnitRate:     item.UnitRate,
			Amount:       amount,
		})
	}

	so := SalesOrder{
		SoNo:         input.SoNo,
		CustomerName: input.CustomerName,
		QuotationId:  input.QuotationId,
		CustomerPoNo: input.CustomerPoNo,
		Status:       SalesOrderStatusOpen,
		Remarks:      input.Remarks,
		TotalAmount:  total,
		Items:        items,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&so).Error; err != nil {
		config.LogError(logger, "salesOrder.go", "CreateSalesOrder", "create", input.SoNo, err)
		return nil, errors.New("cannot create sales order")
	}
	description := fmt.Sprintf("Sales order %s created for %s.", so.SoNo, so.CustomerName)
	if err := createHistory(tx, "CREATE", so.ID, "sales_orders", nil, so, description); err != nil {
		config.LogError(logger, "salesOrder.go", "CreateSalesOrder", "history", so.ID, err)
		return nil, errors.New("cannot create sales order")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "salesOrder.go", "CreateSalesOrder", "commit", so.ID, err)
		return nil, errors.New("cannot create sales order")
	}
	return &so, nil
}

func UpdateStatusSalesOrder(ctx context.Context, id int, newStatus SalesOrderStatus) (*SalesOrder, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	so, err := utils.FetchModel[SalesOrder](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateSalesOrderTransition(so.Status, newStatus); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *so
	if err := tx.Model(&SalesOrder{}).Where("id = ?", id).Update("status", newStatus).Error; err != nil {
		config.LogError(logger, "salesOrder.go", "UpdateStatusSalesOrder", "update status", id, err)
		return nil, errors.New("cannot update sales order status")
	}
	so.Status = newStatus
	description := fmt.Sprintf("Sales order %s status changed to %s.", so.SoNo, newStatus)
	if err := createHistory(tx, "UPDATE", so.ID, "sales_orders", before, so, description); err != nil {
		config.LogError(logger, "salesOrder.go", "UpdateStatusSalesOrder", "history", id, err)
		return nil, errors.New("cannot update sales order status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "salesOrder.go", "UpdateStatusSalesOrder", "commit", id, err)
		return nil, errors.New("cannot update sales order status")
	}
	return so, nil
}

// applyDispatchToSalesOrder accumulates dispatched quantities onto the order's
// lines and derives the dispatch status. Runs inside the dispatch transaction.
func applyDispatchToSalesOrder(tx *gorm.DB, soId int, dispatchedByLine map[int]decimal.Decimal) error {
	var so SalesOrder
	if err := tx.Preload("Items").First(&so, soId).Error; err != nil {
		return err
	}

	fullyDispatched := true
	anyDispatched := false
	for i := range so.Items {
		item := &so.Items[i]
		if qty, ok := dispatchedByLine[item.ID]; ok {
			item.DispatchedMtr = item.DispatchedMtr.Add(qty)
			if err := tx.Model(&SalesOrderItem{}).Where("id = ?", item.ID).
				Update("dispatched_mtr", item.DispatchedMtr).Error; err != nil {
				return err
			}
		}
		if item.DispatchedMtr.GreaterThan(decimal.Zero) {
			anyDispatched = true
		}
		if item.DispatchedMtr.LessThan(item.QuantityMtr) {
			fullyDispatched = false
		}
	}

	target := so.Status
	switch {
	case fullyDispatched:
		target = SalesOrderStatusFullyDispatched
	case anyDispatched:
		target = SalesOrderStatusPartiallyDispatched
	}
	if target == so.Status {
		return nil
	}
	if err := ValidateSalesOrderTransition(so.Status, target); err != nil {
		return err
	}
	return tx.Model(&SalesOrder{}).Where("id = ?", soId).Update("status", target).Error
}

func DeleteSalesOrder(ctx context.Context, id int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	result := CanDeleteSalesOrder(ctx, id)
	if !result.IsValid {
		return errors.New(result.ErrorMessages()[0])
	}
	so, err := utils.FetchModel[SalesOrder](ctx, id, "Items")
	if err != nil {
		return err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Where("sales_order_id = ?", id).Delete(&SalesOrderItem{}).Error; err != nil {
		config.LogError(logger, "salesOrder.go", "DeleteSalesOrder", "delete items", id, err)
		return errors.New("cannot delete sales order")
	}
	if err := tx.Delete(&SalesOrder{}, id).Error; err != nil {
		config.LogError(logger, "salesOrder.go", "DeleteSalesOrder", "delete", id, err)
		return errors.New("cannot delete sales order")
	}
	description := fmt.Sprintf("Sales order %s deleted.", so.SoNo)
	if err := createHistory(tx, "DELETE", id, "sales_orders", so, nil, description); err != nil {
		config.LogError(logger, "salesOrder.go", "DeleteSalesOrder", "history", id, err)
		return errors.New("cannot delete sales order")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "salesOrder.go", "DeleteSalesOrder", "commit", id, err)
		return errors.New("cannot delete sales order")
	}
	return nil
}
