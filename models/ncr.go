package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
)

// StringList stores a list of file paths as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}

// An NCR (non-conformance report) tracks defective material found during
// inspection or by a customer. Evidence photos are mandatory from the start.
type NCR struct {
	ID             int        `gorm:"primary_key" json:"id"`
	NcrNo          string     `gorm:"size:100;uniqueIndex;not null" json:"ncr_no" binding:"required"`
	GrnLineId      *int       `gorm:"index" json:"grn_line_id"`
	InventoryLotId *int       `gorm:"index" json:"inventory_lot_id"`
	Description    string     `gorm:"type:text;not null" json:"description" binding:"required"`
	EvidencePaths  StringList `gorm:"type:json" json:"evidence_paths"`
	Status         NCRStatus  `gorm:"size:20;index;default:'OPEN'" json:"status"`
	Disposition    string     `gorm:"type:text" json:"disposition"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewNCR struct {
	NcrNo          string   `json:"ncr_no" binding:"required"`
	GrnLineId      *int     `json:"grn_line_id"`
	InventoryLotId *int     `json:"inventory_lot_id"`
	Description    string   `json:"description" binding:"required"`
	EvidencePaths  []string `json:"evidence_paths" binding:"required"`
}

func CreateNCR(ctx context.Context, input *NewNCR) (*NCR, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[NCR](ctx, "ncr_no", input.NcrNo); err != nil {
		return nil, err
	}

	ncr := NCR{
		NcrNo:          input.NcrNo,
		GrnLineId:      input.GrnLineId,
		InventoryLotId: input.InventoryLotId,
		Description:    input.Description,
		EvidencePaths:  StringList(input.EvidencePaths),
		Status:         NCRStatusOpen,
	}
	if gate := ValidateAttachments(ncr); !gate.IsValid {
		return nil, errors.New(gate.ErrorMessages()[0])
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&ncr).Error; err != nil {
		config.LogError(logger, "ncr.go", "CreateNCR", "create", input.NcrNo, err)
		return nil, errors.New("cannot create ncr")
	}
	description := fmt.Sprintf("NCR %s opened.", ncr.NcrNo)
	if err := createHistory(tx, "CREATE", ncr.ID, "ncrs", nil, ncr, description); err != nil {
		config.LogError(logger, "ncr.go", "CreateNCR", "history", ncr.ID, err)
		return nil, errors.New("cannot create ncr")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ncr.go", "CreateNCR", "commit", ncr.ID, err)
		return nil, errors.New("cannot create ncr")
	}
	return &ncr, nil
}

type UpdateStatusNCRInput struct {
	Status      NCRStatus `json:"status" binding:"required"`
	Disposition string    `json:"disposition"`
}

// UpdateStatusNCR moves an NCR through review. Closing requires a recorded
// disposition and the evidence gate to hold.
func UpdateStatusNCR(ctx context.Context, id int, input UpdateStatusNCRInput) (*NCR, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	ncr, err := utils.FetchModel[NCR](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateNCRTransition(ncr.Status, input.Status); err != nil {
		return nil, err
	}
	if input.Status == NCRStatusClosed {
		if input.Disposition == "" && ncr.Disposition == "" {
			return nil, errors.New("a disposition is required to close an ncr")
		}
		if gate := ValidateAttachments(*ncr); !gate.IsValid {
			return nil, errors.New(gate.ErrorMessages()[0])
		}
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *ncr
	updates := map[string]interface{}{"status": input.Status}
	if input.Disposition != "" {
		updates["disposition"] = input.Disposition
	}
	if err := tx.Model(&NCR{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		config.LogError(logger, "ncr.go", "UpdateStatusNCR", "update status", id, err)
		return nil, errors.New("cannot update ncr status")
	}
	ncr.Status = input.Status
	if input.Disposition != "" {
		ncr.Disposition = input.Disposition
	}
	description := fmt.Sprintf("NCR %s status changed to %s.", ncr.NcrNo, input.Status)
	if err := createHistory(tx, "UPDATE", ncr.ID, "ncrs", before, ncr, description); err != nil {
		config.LogError(logger, "ncr.go", "UpdateStatusNCR", "history", id, err)
		return nil, errors.New("cannot update ncr status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ncr.go", "UpdateStatusNCR", "commit", id, err)
		return nil, errors.New("cannot update ncr status")
	}
	return ncr, nil
}

// AddNCREvidence appends evidence files to an open NCR.
func AddNCREvidence(ctx context.Context, id int, paths []string) (*NCR, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	ncr, err := utils.FetchModel[NCR](ctx, id)
	if err != nil {
		return nil, err
	}
	if ncr.Status == NCRStatusClosed {
		return nil, errors.New("cannot add evidence to a closed ncr")
	}
	if len(paths) == 0 {
		return nil, errors.New("no evidence files given")
	}

	ncr.EvidencePaths = StringList(utils.UniqueSlice(append([]string(ncr.EvidencePaths), paths...)))
	if err := db.WithContext(ctx).Model(&NCR{}).Where("id = ?", id).
		Update("evidence_paths", ncr.EvidencePaths).Error; err != nil {
		config.LogError(logger, "ncr.go", "AddNCREvidence", "update", id, err)
		return nil, errors.New("cannot add evidence")
	}
	return ncr, nil
}
