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

type PurchaseRequisition struct {
	ID          int                       `gorm:"primary_key" json:"id"`
	PrNo        string                    `gorm:"size:100;uniqueIndex;not null" json:"pr_no" binding:"required"`
	RequestedBy string                    `gorm:"size:100" json:"requested_by"`
	Status      PurchaseRequisitionStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	Remarks     string                    `gorm:"type:text" json:"remarks"`
	TotalAmount decimal.Decimal           `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items       []PurchaseRequisitionItem `gorm:"foreignKey:RequisitionId" json:"items"`
	CreatedAt   time.Time                 `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`
}

type PurchaseRequisitionItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	RequisitionId int             `gorm:"index;not null" json:"requisition_id"`
	MaterialSpec  string          `gorm:"size:100;not null" json:"material_spec" binding:"required"`
	SizeInch      string          `gorm:"size:50" json:"size_inch"`
	Schedule      string          `gorm:"size:50" json:"schedule"`
	QuantityMtr   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
	EstUnitRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"est_unit_rate"`
}

type NewPurchaseRequisition struct {
	PrNo        string                       `json:"pr_no" binding:"required"`
	RequestedBy string                       `json:"requested_by"`
	Remarks     string                       `json:"remarks"`
	Items       []NewPurchaseRequisitionItem `json:"items" binding:"required"`
}

type NewPurchaseRequisitionItem struct {
	MaterialSpec string          `json:"material_spec" binding:"required"`
	SizeInch     string          `json:"size_inch"`
	Schedule     string          `json:"schedule"`
	QuantityMtr  decimal.Decimal `json:"quantity_mtr" binding:"required"`
	EstUnitRate  decimal.Decimal `json:"est_unit_rate"`
}

func CreatePurchaseRequisition(ctx context.Context, input *NewPurchaseRequisition) (*PurchaseRequisition, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if len(input.Items) == 0 {
		return nil, errors.New("purchase requisition must have at least one item")
	}
	if err := utils.ValidateUnique[PurchaseRequisition](ctx, "pr_no", input.PrNo); err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]PurchaseRequisitionItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("item quantity must be positive")
		}
		total = total.Add(item.QuantityMtr.Mul(item.EstUnitRate))
		items = append(items, PurchaseRequisitionItem{
			MaterialSpec: item.MaterialSpec,
			SizeInch:     item.SizeInch,
			Schedule:     item.Schedule,
			QuantityMtr:  item.QuantityMtr,
			EstUnitRate:  item.EstUnitRate,
		})
	}

	pr := PurchaseRequisition{
		PrNo:        input.PrNo,
		RequestedBy: input.RequestedBy,
		Status:      PurchaseRequisitionStatusDraft,
		Remarks:     input.Remarks,
		TotalAmount: total,
		Items:       items,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&pr).Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "CreatePurchaseRequisition", "create", input.PrNo, err)
		return nil, errors.New("cannot create purchase requisition")
	}
	description := fmt.Sprintf("Purchase requisition %s created.", pr.PrNo)
	if err := createHistory(tx, "CREATE", pr.ID, "purchase_requisitions", nil, pr, description); err != nil {
		config.LogError(logger, "purchaseRequisition.go", "CreatePurchaseRequisition", "history", pr.ID, err)
		return nil, errors.New("cannot create purchase requisition")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "CreatePurchaseRequisition", "commit", pr.ID, err)
		return nil, errors.New("cannot create purchase requisition")
	}
	return &pr, nil
}

// SubmitPurchaseRequisition routes a draft to approval, skipping the queue
// when the estimated value is at or below the threshold.
func SubmitPurchaseRequisition(ctx context.Context, id int) (*PurchaseRequisition, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	pr, err := utils.FetchModel[PurchaseRequisition](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePurchaseRequisitionTransition(pr.Status, PurchaseRequisitionStatusPendingApproval); err != nil {
		return nil, err
	}

	target := PurchaseRequisitionStatusPendingApproval
	if !RequiresApproval(DocumentTypePurchaseRequisition, pr.TotalAmount, nil) {
		target = PurchaseRequisitionStatusApproved
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *pr
	if err := tx.Model(&PurchaseRequisition{}).Where("id = ?", id).Update("status", target).Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "SubmitPurchaseRequisition", "update status", id, err)
		return nil, errors.New("cannot submit purchase requisition")
	}
	pr.Status = target
	description := fmt.Sprintf("Purchase requisition %s submitted (%s).", pr.PrNo, target)
	if err := createHistory(tx, "UPDATE", pr.ID, "purchase_requisitions", before, pr, description); err != nil {
		config.LogError(logger, "purchaseRequisition.go", "SubmitPurchaseRequisition", "history", id, err)
		return nil, errors.New("cannot submit purchase requisition")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "SubmitPurchaseRequisition", "commit", id, err)
		return nil, errors.New("cannot submit purchase requisition")
	}
	return pr, nil
}

type UpdateStatusPurchaseRequisitionInput struct {
	Status  PurchaseRequisitionStatus `json:"status" binding:"required"`
	Remarks string                    `json:"remarks"`
}

func UpdateStatusPurchaseRequisition(ctx context.Context, id int, input UpdateStatusPurchaseRequisitionInput) (*PurchaseRequisition, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	pr, err := utils.FetchModel[PurchaseRequisition](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidatePurchaseRequisitionTransition(pr.Status, input.Status); err != nil {
		return nil, err
	}

	switch input.Status {
	case PurchaseRequisitionStatusApproved, PurchaseRequisitionStatusRejected:
		if !utils.GetCanApproveFromContext(ctx) {
			return nil, errors.New("approval permission required")
		}
	}
	if input.Status == PurchaseRequisitionStatusRejected && input.Remarks == "" {
		return nil, errors.New("remarks are required when rejecting a purchase requisition")
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *pr
	updates := map[string]interface{}{"status": input.Status}
	if input.Remarks != "" {
		updates["remarks"] = input.Remarks
	}
	if err := tx.Model(&PurchaseRequisition{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "UpdateStatusPurchaseRequisition", "update status", id, err)
		return nil, errors.New("cannot update purchase requisition status")
	}
	pr.Status = input.Status
	description := fmt.Sprintf("Purchase requisition %s status changed to %s.", pr.PrNo, input.Status)
	if err := createHistory(tx, "UPDATE", pr.ID, "purchase_requisitions", before, pr, description); err != nil {
		config.LogError(logger, "purchaseRequisition.go", "UpdateStatusPurchaseRequisition", "history", id, err)
		return nil, errors.New("cannot update purchase requisition status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "purchaseRequisition.go", "UpdateStatusPurchaseRequisition", "commit", id, err)
		return nil, errors.New("cannot update purchase requisition status")
	}
	return pr, nil
}

// markRequisitionConverted flips an approved PR to CONVERTED inside the
// purchase order creation transaction.
func markRequisitionConverted(tx *gorm.DB, id int) error {
	pr := PurchaseRequisition{}
	if err := tx.First(&pr, id).Error; err != nil {
		return err
	}
	if err := ValidatePurchaseRequisitionTransition(pr.Status, PurchaseRequisitionStatusConverted); err != nil {
		return err
	}
	return tx.Model(&PurchaseRequisition{}).Where("id = ?", id).
		Update("status", PurchaseRequisitionStatusConverted).Error
}
