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

type PurchaseOrder struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	PoNo          string              `gorm:"size:100;uniqueIndex;not null" json:"po_no" binding:"required"`
	SupplierName  string              `gorm:"size:255;not null" json:"supplier_name" binding:"required"`
	RequisitionId *int                `gorm:"index" json:"requisition_id"`
	Status        PurchaseOrderStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	Remarks       string              `gorm:"type:text" json:"remarks"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items         []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderId" json:"items"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID              int             `gorm:"primary_key" json:"id"`
	PurchaseOrderId int             `gorm:"index;not null" json:"purchase_order_id"`
	MaterialSpec    string          `gorm:"size:100;not null" json:"material_spec" binding:"required"`
	SizeInch        string          `gorm:"size:50" json:"size_inch"`
	Schedule        string          `gorm:"size:50" json:"schedule"`
	QuantityMtr     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
	ReceivedMtr     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"received_mtr"`
	UnitRate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_rate" binding:"required"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type NewPurchaseOrder struct {
	PoNo          string                 `json:"po_no" binding:"required"`
	SupplierName  string                 `json:"supplier_name" binding:"required"`
	RequisitionId *int                   `json:"requisition_id"`
	Remarks       string                 `json:"remarks"`
	Items         []NewPurchaseOrderItem `json:"items" binding:"required"`
}

type NewPurchaseOrderItem struct {
	MaterialSpec string          `json:"material_spec" binding:"required"`
	SizeInch     string          `json:"size_inch"`
	Schedule     string          `json:"schedule"`
	QuantityMtr  decimal.Decimal `json:"quantity_mtr" binding:"required"`
	UnitRate     decimal.Decimal `json:"unit_rate" binding:"required"`
}

func CreatePurchaseOrder(ctx context.Context, input *NewPurchaseOrder) (*PurchaseOrder, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if len(input.Items) == 0 {
		return nil, errors.New("purchase order must have at least one item")
	}
	if err := utils.ValidateUnique[PurchaseOrder](ctx, "po_no", input.PoNo); err != nil {
		return nil, err
	}
	if trace := ValidatePurchaseOrderTraceability(ctx, input.RequisitionId); !trace.IsValid {
		return nil, errors.New(trace.ErrorMessages()[0])
	}

	total := decimal.Zero
	items := make([]PurchaseOrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("item quantity must be positive")
		}
		amount := item.QuantityMtr.Mul(item.UnitRate)
		total = total.Add(amount)
		items = append(items, PurchaseOrderItem{
			MaterialSpec: item.MaterialSpec,
			SizeInch:     item.SizeInch,
			Schedule:     item.Schedule,
			QuantityMtr:  item.QuantityMtr,
			UnitRate:     item.UnitRate,
			Amount:       amount,
		})
	}

	po := PurchaseOrder{
		PoNo:          input.PoNo,
		SupplierName:  input.SupplierName,
		RequisitionId: input.RequisitionId,
		Status:        PurchaseOrderStatusDraft,
		Remarks:       input.Remarks,
		TotalAmount:   total,
		Items:         items,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&po).Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "CreatePurchaseOrder", "create", input.PoNo, err)
		return nil, errors.New("cannot create purchase order")
	}
	if input.RequisitionId != nil && *input.RequisitionId > 0 {
		if err := markRequisitionConverted(tx, *input.RequisitionId); err != nil {
			config.LogError(logger, "purchaseOrder.go", "CreatePurchaseOrder", "convert requisition", *input.RequisitionId, err)
			return nil, err
		}
	}
	description := fmt.Sprintf("Purchase order %s created for %s.", po.PoNo, po.SupplierName)
	if err := createHistory(tx, "CREATE", po.ID, "purchase_orders", nil, po, description); err != nil {
		config.LogError(logger, "purchaseOrder.go", "CreatePurchaseOrder", "history", po.ID, err)
		return nil, errors.New("cannot create purchase order")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "CreatePurchaseOrder", "commit", po.ID, err)
		return nil, errors.New("cannot create purchase order")
	}
	return &po, nil
}

// OpenPurchaseOrder releases a draft to the supplier. Orders above the
// approval threshold need the approval capability to be released.
func OpenPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	po, err := utils.FetchModel[PurchaseOrder](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePurchaseOrderTransition(po.Status, PurchaseOrderStatusOpen); err != nil {
		return nil, err
	}
	if RequiresApproval(DocumentTypePurchaseOrder, po.TotalAmount, nil) && !utils.GetCanApproveFromContext(ctx) {
		return nil, errors.New("approval permission required")
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *po
	if err := tx.Model(&PurchaseOrder{}).Where("id = ?", id).Update("status", PurchaseOrderStatusOpen).Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "OpenPurchaseOrder", "update status", id, err)
		return nil, errors.New("cannot open purchase order")
	}
	po.Status = PurchaseOrderStatusOpen
	description := fmt.Sprintf("Purchase order %s opened.", po.PoNo)
	if err := createHistory(tx, "UPDATE", po.ID, "purchase_orders", before, po, description); err != nil {
		config.LogError(logger, "purchaseOrder.go", "OpenPurchaseOrder", "history", id, err)
		return nil, errors.New("cannot open purchase order")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "OpenPurchaseOrder", "commit", id, err)
		return nil, errors.New("cannot open purchase order")
	}
	return po, nil
}

func UpdateStatusPurchaseOrder(ctx context.Context, id int, newStatus PurchaseOrderStatus) (*PurchaseOrder, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	po, err := utils.FetchModel[PurchaseOrder](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePurchaseOrderTransition(po.Status, newStatus); err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *po
	if err := tx.Model(&PurchaseOrder{}).Where("id = ?", id).Update("status", newStatus).Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "UpdateStatusPurchaseOrder", "update status", id, err)
		return nil, errors.New("cannot update purchase order status")
	}
	po.Status = newStatus
	description := fmt.Sprintf("Purchase order %s status changed to %s.", po.PoNo, newStatus)
	if err := createHistory(tx, "UPDATE", po.ID, "purchase_orders", before, po, description); err != nil {
		config.LogError(logger, "purchaseOrder.go", "UpdateStatusPurchaseOrder", "history", id, err)
		return nil, errors.New("cannot update purchase order status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "UpdateStatusPurchaseOrder", "commit", id, err)
		return nil, errors.New("cannot update purchase order status")
	}
	return po, nil
}

// applyReceiptToPurchaseOrder accumulates received quantities onto the order's
// lines and derives the receipt status. Runs inside the GRN posting
// transaction.
func applyReceiptToPurchaseOrder(tx *gorm.DB, poId int, receivedByLine map[int]decimal.Decimal) error {
	var po PurchaseOrder
	if err := tx.Preload("Items").First(&po, poId).Error; err != nil {
		return err
	}

	fullyReceived := true
	anyReceived := false
	for i := range po.Items {
		item := &po.Items[i]
		if qty, ok := receivedByLine[item.ID]; ok {
			item.ReceivedMtr = item.ReceivedMtr.Add(qty)
			if err := tx.Model(&PurchaseOrderItem{}).Where("id = ?", item.ID).
				Update("received_mtr", item.ReceivedMtr).Error; err != nil {
				return err
			}
		}
		if item.ReceivedMtr.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
		if item.ReceivedMtr.LessThan(item.QuantityMtr) {
			fullyReceived = false
		}
	}

	target := po.Status
	switch {
	case fullyReceived:
		target = PurchaseOrderStatusFullyReceived
	case anyReceived:
		target = PurchaseOrderStatusPartiallyReceived
	}
	if target == po.Status {
		return nil
	}
	if err := ValidatePurchaseOrderTransition(po.Status, target); err != nil {
		return err
	}
	return tx.Model(&PurchaseOrder{}).Where("id = ?", poId).Update("status", target).Error
}

func DeletePurchaseOrder(ctx context.Context, id int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	result := CanDeletePurchaseOrder(ctx, id)
	if !result.IsValid {
		return errors.New(result.ErrorMessages()[0])
	}
	po, err := utils.FetchModel[PurchaseOrder](ctx, id, "Items")
	if err != nil {
		return err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Where("purchase_order_id = ?", id).Delete(&PurchaseOrderItem{}).Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "DeletePurchaseOrder", "delete items", id, err)
		return errors.New("cannot delete purchase order")
	}
	if err := tx.Delete(&PurchaseOrder{}, id).Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "DeletePurchaseOrder", "delete", id, err)
		return errors.New("cannot delete purchase order")
	}
	description := fmt.Sprintf("Purchase order %s deleted.", po.PoNo)
	if err := createHistory(tx, "DELETE", id, "purchase_orders", po, nil, description); err != nil {
		config.LogError(logger, "purchaseOrder.go", "DeletePurchaseOrder", "history", id, err)
		return errors.New("cannot delete purchase order")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseOrder.go", "DeletePurchaseOrder", "commit", id, err)
		return errors.New("cannot delete purchase order")
	}
	return nil
}
