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

// A GRN records material arriving against a purchase order. Every line
// carries the heat number and MTC date from the mill certificate; those two
// fields drive traceability and FIFO ordering downstream.

type GoodsReceiptNote struct {
	ID              int                    `gorm:"primary_key" json:"id"`
	GrnNo           string                 `gorm:"size:100;uniqueIndex;not null" json:"grn_no" binding:"required"`
	PurchaseOrderId *int                   `gorm:"index" json:"purchase_order_id"`
	MtcNo           string                 `gorm:"size:100" json:"mtc_no"`
	MtcDocumentPath string                 `gorm:"size:500" json:"mtc_document_path"`
	Status          GoodsReceiptNoteStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	Remarks         string                 `gorm:"type:text" json:"remarks"`
	Lines           []GoodsReceiptNoteLine `gorm:"foreignKey:GoodsReceiptNoteId" json:"lines"`
	CreatedAt       time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

type GoodsReceiptNoteLine struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	GoodsReceiptNoteId  int             `gorm:"index;not null" json:"goods_receipt_note_id"`
	PurchaseOrderItemId *int            `gorm:"index" json:"purchase_order_item_id"`
	HeatNo              string          `gorm:"size:100;index;not null" json:"heat_no" binding:"required"`
	MaterialSpec        string          `gorm:"size:100;not null" json:"material_spec" binding:"required"`
	SizeInch            string          `gorm:"size:50" json:"size_inch"`
	Schedule            string          `gorm:"size:50" json:"schedule"`
	QuantityMtr         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
	MtcDate             time.Time       `gorm:"index;not null" json:"mtc_date"`
}

type NewGoodsReceiptNote struct {
	GrnNo           string                    `json:"grn_no" binding:"required"`
	PurchaseOrderId *int                      `json:"purchase_order_id" binding:"required"`
	MtcNo           string                    `json:"mtc_no"`
	MtcDocumentPath string                    `json:"mtc_document_path"`
	Remarks         string                    `json:"remarks"`
	Lines           []NewGoodsReceiptNoteLine `json:"lines" binding:"required"`
}

type NewGoodsReceiptNoteLine struct {
	PurchaseOrderItemId *int            `json:"purchase_order_item_id"`
	HeatNo              string          `json:"heat_no" binding:"required"`
	MaterialSpec        string          `json:"material_spec" binding:"required"`
	SizeInch            string          `json:"size_inch"`
	Schedule            string          `json:"schedule"`
	QuantityMtr         decimal.Decimal `json:"quantity_mtr" binding:"required"`
	MtcDate             time.Time       `json:"mtc_date" binding:"required"`
}

func CreateGoodsReceiptNote(ctx context.Context, input *NewGoodsReceiptNote) (*GoodsReceiptNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if len(input.Lines) == 0 {
		return nil, errors.New("goods receipt note must have at least one line")
	}
	if err := utils.ValidateUnique[GoodsReceiptNote](ctx, "grn_no", input.GrnNo); err != nil {
		return nil, err
	}
	if trace := ValidateGoodsReceiptTraceability(ctx, input.PurchaseOrderId); !trace.IsValid {
		return nil, errors.New(trace.ErrorMessages()[0])
	}

	lines := make([]GoodsReceiptNoteLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("line quantity must be positive")
		}
		if line.HeatNo == "" {
			return nil, errors.New("heat no is required on every line")
		}
		if line.MtcDate.IsZero() {
			return nil, errors.New("mtc date is required on every line")
		}
		lines = append(lines, GoodsReceiptNoteLine{
			PurchaseOrderItemId: line.PurchaseOrderItemId,
			HeatNo:              line.HeatNo,
			MaterialSpec:        line.MaterialSpec,
			SizeInch:            line.SizeInch,
			Schedule:            line.Schedule,
			QuantityMtr:         line.QuantityMtr,
			MtcDate:             line.MtcDate,
		})
	}

	grn := GoodsReceiptNote{
		GrnNo:           input.GrnNo,
		PurchaseOrderId: input.PurchaseOrderId,
		MtcNo:           input.MtcNo,
		MtcDocumentPath: input.MtcDocumentPath,
		Status:          GoodsReceiptNoteStatusDraft,
		Remarks:         input.Remarks,
		Lines:           lines,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&grn).Error; err != nil {
		config.LogError(logger, "grn.go", "CreateGoodsReceiptNote", "create", input.GrnNo, err)
		return nil, errors.New("cannot create goods receipt note")
	}
	description := fmt.Sprintf("GRN %s created.", grn.GrnNo)
	if err := createHistory(tx, "CREATE", grn.ID, "goods_receipt_notes", nil, grn, description); err != nil {
		config.LogError(logger, "grn.go", "CreateGoodsReceiptNote", "history", grn.ID, err)
		return nil, errors.New("cannot create goods receipt note")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "grn.go", "CreateGoodsReceiptNote", "commit", grn.ID, err)
		return nil, errors.New("cannot create goods receipt note")
	}
	return &grn, nil
}

// PostGoodsReceiptNote commits a draft receipt to stock. The MTC gate must
// pass first; posting then creates one UNDER_INSPECTION inventory lot per
// line and rolls the received quantities up to the purchase order, all in one
// transaction.
func PostGoodsReceiptNote(ctx context.Context, id int) (*GoodsReceiptNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	grn, err := utils.FetchModel[GoodsReceiptNote](ctx, id, "Lines")
	if err != nil {
		return nil, err
	}
	if err := ValidateGoodsReceiptNoteTransition(grn.Status, GoodsReceiptNoteStatusPosted); err != nil {
		return nil, err
	}
	if gate := ValidateAttachments(*grn); !gate.IsValid {
		return nil, errors.New(gate.ErrorMessages()[0])
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *grn
	if err := tx.Model(&GoodsReceiptNote{}).Where("id = ?", id).
		Update("status", GoodsReceiptNoteStatusPosted).Error; err != nil {
		config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "update status", id, err)
		return nil, errors.New("cannot post goods receipt note")
	}
	grn.Status = GoodsReceiptNoteStatusPosted

	receivedByLine := map[int]decimal.Decimal{}
	for _, line := range grn.Lines {
		lot := InventoryLot{
			GrnLineId:    line.ID,
			HeatNo:       line.HeatNo,
			MtcNo:        grn.MtcNo,
			MtcDate:      line.MtcDate,
			MaterialSpec: line.MaterialSpec,
			SizeInch:     line.SizeInch,
			Schedule:     line.Schedule,
			QuantityMtr:  line.QuantityMtr,
			Status:       InventoryLotStatusUnderInspection,
		}
		if err := tx.Create(&lot).Error; err != nil {
			config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "create lot", line.ID, err)
			return nil, errors.New("cannot post goods receipt note")
		}
		movement := StockMovement{
			InventoryLotId: lot.ID,
			HeatNo:         lot.HeatNo,
			MovementType:   StockMovementReceipt,
			QuantityMtr:    lot.QuantityMtr,
			BalanceMtr:     lot.QuantityMtr,
			ReferenceType:  "goods_receipt_notes",
			ReferenceId:    grn.ID,
		}
		if err := RecordStockMovement(tx, movement); err != nil {
			config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "stock movement", lot.ID, err)
			return nil, errors.New("cannot post goods receipt note")
		}
		if line.PurchaseOrderItemId != nil {
			receivedByLine[*line.PurchaseOrderItemId] = receivedByLine[*line.PurchaseOrderItemId].Add(line.QuantityMtr)
		}
	}

	if grn.PurchaseOrderId != nil && len(receivedByLine) > 0 {
		if err := applyReceiptToPurchaseOrder(tx, *grn.PurchaseOrderId, receivedByLine); err != nil {
			config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "apply receipt to po", *grn.PurchaseOrderId, err)
			return nil, errors.New("cannot post goods receipt note")
		}
	}

	description := fmt.Sprintf("GRN %s posted; %d lot(s) created.", grn.GrnNo, len(grn.Lines))
	if err := createHistory(tx, "UPDATE", grn.ID, "goods_receipt_notes", before, grn, description); err != nil {
		config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "history", id, err)
		return nil, errors.New("cannot post goods receipt note")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "grn.go", "PostGoodsReceiptNote", "commit", id, err)
		return nil, errors.New("cannot post goods receipt note")
	}
	return grn, nil
}

// CompleteQualityCheck closes inspection on a GRN. Every line must carry a
// decided inspection (PASS or FAIL) with its report attached.
func CompleteQualityCheck(ctx context.Context, id int) (*GoodsReceiptNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	grn, err := utils.FetchModel[GoodsReceiptNote](ctx, id, "Lines")
	if err != nil {
		return nil, err
	}
	if err := ValidateGoodsReceiptNoteTransition(grn.Status, GoodsReceiptNoteStatusQcComplete); err != nil {
		return nil, err
	}

	for _, line := range grn.Lines {
		var inspection Inspection
		err := db.WithContext(ctx).Where("grn_line_id = ?", line.ID).First(&inspection).Error
		if err != nil {
			return nil, fmt.Errorf("line with heat no %s has no inspection", line.HeatNo)
		}
		if !inspection.OverallResult.IsDecided() {
			return nil, fmt.Errorf("inspection for heat no %s is still %s", line.HeatNo, inspection.OverallResult)
		}
		if gate := ValidateAttachments(inspection); !gate.IsValid {
			return nil, errors.New(gate.ErrorMessages()[0])
		}
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *grn
	if err := tx.Model(&GoodsReceiptNote{}).Where("id = ?", id).
		Update("status", GoodsReceiptNoteStatusQcComplete).Error; err != nil {
		config.LogError(logger, "grn.go", "CompleteQualityCheck", "update status", id, err)
		return nil, errors.New("cannot complete quality check")
	}
	grn.Status = GoodsReceiptNoteStatusQcComplete
	description := fmt.Sprintf("GRN %s quality check complete.", grn.GrnNo)
	if err := createHistory(tx, "UPDATE", grn.ID, "goods_receipt_notes", before, grn, description); err != nil {
		config.LogError(logger, "grn.go", "CompleteQualityCheck", "history", id, err)
		return nil, errors.New("cannot complete quality check")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "grn.go", "CompleteQualityCheck", "commit", id, err)
		return nil, errors.New("cannot complete quality check")
	}
	return grn, nil
}

func DeleteGoodsReceiptNote(ctx context.Context, id int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	result := CanDeleteGoodsReceiptNote(ctx, id)
	if !result.IsValid {
		return errors.New(result.ErrorMessages()[0])
	}
	grn, err := utils.FetchModel[GoodsReceiptNote](ctx, id, "Lines")
	if err != nil {
		return err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Where("goods_receipt_note_id = ?", id).Delete(&GoodsReceiptNoteLine{}).Error; err != nil {
		config.LogError(logger, "grn.go", "DeleteGoodsReceiptNote", "delete lines", id, err)
		return errors.New("cannot delete goods receipt note")
	}
	if err := tx.Delete(&GoodsReceiptNote{}, id).Error; err != nil {
		config.LogError(logger, "grn.go", "DeleteGoodsReceiptNote", "delete", id, err)
		return errors.New("cannot delete goods receipt note")
	}
	description := fmt.Sprintf("GRN %s deleted.", grn.GrnNo)
	if err := createHistory(tx, "DELETE", id, "goods_receipt_notes", grn, nil, description); err != nil {
		config.LogError(logger, "grn.go", "DeleteGoodsReceiptNote", "history", id, err)
		return errors.New("cannot delete goods receipt note")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "grn.go", "DeleteGoodsReceiptNote", "commit", id, err)
		return errors.New("cannot delete goods receipt note")
	}
	return nil
}
