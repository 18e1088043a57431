package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

type Inspection struct {
	ID            int              `gorm:"primary_key" json:"id"`
	GrnLineId     int              `gorm:"index;not null" json:"grn_line_id" binding:"required"`
	Inspector     string           `gorm:"size:100" json:"inspector"`
	OverallResult InspectionResult `gorm:"size:20;default:'PENDING'" json:"overall_result"`
	ReportPath    string           `gorm:"size:500" json:"report_path"`
	Remarks       string           `gorm:"type:text" json:"remarks"`
	InspectedAt   *time.Time       `json:"inspected_at"`
	CreatedAt     time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInspection struct {
	GrnLineId int    `json:"grn_line_id" binding:"required"`
	Inspector string `json:"inspector"`
	Remarks   string `json:"remarks"`
}

// CreateInspection opens a PENDING inspection for a GRN line and moves the
// parent GRN to UNDER_INSPECTION on the first one.
func CreateInspection(ctx context.Context, input *NewInspection) (*Inspection, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	line, err := utils.FetchModel[GoodsReceiptNoteLine](ctx, input.GrnLineId)
	if err != nil {
		return nil, err
	}
	grn, err := utils.FetchModel[GoodsReceiptNote](ctx, line.GoodsReceiptNoteId)
	if err != nil {
		return nil, err
	}
	if grn.Status != GoodsReceiptNoteStatusPosted && grn.Status != GoodsReceiptNoteStatusUnderInspection {
		return nil, fmt.Errorf("cannot inspect a goods receipt note with status %s", grn.Status)
	}
	count, err := utils.ResourceCountWhere[Inspection](ctx, "grn_line_id = ?", input.GrnLineId)
	if err != nil {
		config.LogError(logger, "inspection.go", "CreateInspection", "count existing", input.GrnLineId, err)
		return nil, errors.New("cannot create inspection")
	}
	if count > 0 {
		return nil, errors.New("this line already has an inspection")
	}

	inspection := Inspection{
		GrnLineId:     input.GrnLineId,
		Inspector:     input.Inspector,
		OverallResult: InspectionResultPending,
		Remarks:       input.Remarks,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&inspection).Error; err != nil {
		config.LogError(logger, "inspection.go", "CreateInspection", "create", input.GrnLineId, err)
		return nil, errors.New("cannot create inspection")
	}
	if grn.Status == GoodsReceiptNoteStatusPosted {
		if err := ValidateGoodsReceiptNoteTransition(grn.Status, GoodsReceiptNoteStatusUnderInspection); err != nil {
			return nil, err
		}
		if err := tx.Model(&GoodsReceiptNote{}).Where("id = ?", grn.ID).
			Update("status", GoodsReceiptNoteStatusUnderInspection).Error; err != nil {
			config.LogError(logger, "inspection.go", "CreateInspection", "move grn under inspection", grn.ID, err)
			return nil, errors.New("cannot create inspection")
		}
	}
	description := fmt.Sprintf("Inspection opened for heat no %s.", line.HeatNo)
	if err := createHistory(tx, "CREATE", inspection.ID, "inspections", nil, inspection, description); err != nil {
		config.LogError(logger, "inspection.go", "CreateInspection", "history", inspection.ID, err)
		return nil, errors.New("cannot create inspection")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inspection.go", "CreateInspection", "commit", inspection.ID, err)
		return nil, errors.New("cannot create inspection")
	}
	return &inspection, nil
}

type RecordInspectionResultInput struct {
	Result     InspectionResult `json:"result" binding:"required"`
	ReportPath string           `json:"report_path"`
	Remarks    string           `json:"remarks"`
}

// RecordInspectionResult records the outcome of an inspection and moves the
// line's inventory lot accordingly: PASS releases the lot to stock, FAIL
// rejects it, HOLD parks it. A decided result must carry the report.
func RecordInspectionResult(ctx context.Context, id int, input RecordInspectionResultInput) (*Inspection, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	inspection, err := utils.FetchModel[Inspection](ctx, id)
	if err != nil {
		return nil, err
	}
	if inspection.OverallResult.IsDecided() {
		return nil, fmt.Errorf("inspection already decided as %s", inspection.OverallResult)
	}
	if input.Result == InspectionResultPending {
		return nil, errors.New("result must be HOLD, PASS or FAIL")
	}

	before := *inspection
	inspection.OverallResult = input.Result
	if input.ReportPath != "" {
		inspection.ReportPath = input.ReportPath
	}
	if input.Remarks != "" {
		inspection.Remarks = input.Remarks
	}
	if gate := ValidateAttachments(*inspection); !gate.IsValid {
		return nil, errors.New(gate.ErrorMessages()[0])
	}

	lotStatus := map[InspectionResult]InventoryLotStatus{
		InspectionResultPass: InventoryLotStatusAccepted,
		InspectionResultFail: InventoryLotStatusRejected,
		InspectionResultHold: InventoryLotStatusHold,
	}[input.Result]

	now := time.Now()
	inspection.InspectedAt = &now

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Model(&Inspection{}).Where("id = ?", id).Updates(map[string]interface{}{
		"overall_result": inspection.OverallResult,
		"report_path":    inspection.ReportPath,
		"remarks":        inspection.Remarks,
		"inspected_at":   inspection.InspectedAt,
	}).Error; err != nil {
		config.LogError(logger, "inspection.go", "RecordInspectionResult", "update", id, err)
		return nil, errors.New("cannot record inspection result")
	}
	if err := tx.Model(&InventoryLot{}).Where("grn_line_id = ?", inspection.GrnLineId).
		Update("status", lotStatus).Error; err != nil {
		config.LogError(logger, "inspection.go", "RecordInspectionResult", "update lot", inspection.GrnLineId, err)
		return nil, errors.New("cannot record inspection result")
	}
	description := fmt.Sprintf("Inspection %d recorded as %s.", id, input.Result)
	if err := createHistory(tx, "UPDATE", id, "inspections", before, inspection, description); err != nil {
		config.LogError(logger, "inspection.go", "RecordInspectionResult", "history", id, err)
		return nil, errors.New("cannot record inspection result")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inspection.go", "RecordInspectionResult", "commit", id, err)
		return nil, errors.New("cannot record inspection result")
	}
	return inspection, nil
}
