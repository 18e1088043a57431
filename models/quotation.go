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

// Quotations are versioned: every revision of the same QuotationNo is its own
// row with its own lifecycle, and at most one revision of a family may end up
// WON. The supersede engine below enforces that.

type Quotation struct {
	ID           int             `gorm:"primary_key" json:"id"`
	QuotationNo  string          `gorm:"size:100;index:idx_quotation_no;not null" json:"quotation_no" binding:"required"`
	Version      int             `gorm:"not null;default:1" json:"version"`
	CustomerName string          `gorm:"size:255;not null" json:"customer_name" binding:"required"`
	ProjectName  string          `gorm:"size:255" json:"project_name"`
	Status       QuotationStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	Remarks      string          `gorm:"type:text" json:"remarks"`
	LostReason   string          `gorm:"type:text" json:"lost_reason"`
	ValidUntil   *time.Time      `json:"valid_until"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Items        []QuotationItem `gorm:"foreignKey:QuotationId" json:"items"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuotationItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	QuotationId  int             `gorm:"index;not null" json:"quotation_id"`
	MaterialSpec string          `gorm:"size:100;not null" json:"material_spec" binding:"required"`
	SizeInch     string          `gorm:"size:50" json:"size_inch"`
	Schedule     string          `gorm:"size:50" json:"schedule"`
	QuantityMtr  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
	UnitRate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_rate" binding:"required"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
}

type NewQuotation struct {
	QuotationNo  string             `json:"quotation_no" binding:"required"`
	CustomerName string             `json:"customer_name" binding:"required"`
	ProjectName  string             `json:"project_name"`
	Remarks      string             `json:"remarks"`
	ValidUntil   *time.Time         `json:"valid_until"`
	Items        []NewQuotationItem `json:"items" binding:"required"`
}

type NewQuotationItem struct {
	MaterialSpec string          `json:"material_spec" binding:"required"`
	SizeInch     string          `json:"size_inch"`
	Schedule     string          `json:"schedule"`
	QuantityMtr  decimal.Decimal `json:"quantity_mtr" binding:"required"`
	UnitRate     decimal.Decimal `json:"unit_rate" binding:"required"`
}

func (input NewQuotation) validate() error {
	if len(input.Items) == 0 {
		return errors.New("quotation must have at least one item")
	}
	for _, item := range input.Items {
		if item.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return errors.New("item quantity must be positive")
		}
		if item.UnitRate.IsNegative() {
			return errors.New("item unit rate cannot be negative")
		}
	}
	return nil
}

func buildQuotationItems(items []NewQuotationItem) ([]QuotationItem, decimal.Decimal) {
	total := decimal.Zero
	built := make([]QuotationItem, 0, len(items))
	for _, item := range items {
		amount := item.QuantityMtr.Mul(item.UnitRate)
		total = total.Add(amount)
		built = append(built, QuotationItem{
			MaterialSpec: item.MaterialSpec,
			SizeInch:     item.SizeInch,
			Schedule:     item.Schedule,
			QuantityMtr:  item.QuantityMtr,
			UnitRate:     item.UnitRate,
			Amount:       amount,
		})
	}
	return built, total
}

func CreateQuotation(ctx context.Context, input *NewQuotation) (*Quotation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := input.validate(); err != nil {
		return nil, err
	}

	// A fresh quotation number starts at version 1; re-using a number means
	// the caller wants a new family member, which goes through
	// CreateQuotationRevision instead.
	count, err := utils.ResourceCountWhere[Quotation](ctx, "quotation_no = ?", input.QuotationNo)
	if err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotation", "count revisions", input.QuotationNo, err)
		return nil, errors.New("cannot create quotation")
	}
	if count > 0 {
		return nil, errors.New("quotation no already exists; create a revision instead")
	}

	items, total := buildQuotationItems(input.Items)
	quotation := Quotation{
		QuotationNo:  input.QuotationNo,
		Version:      1,
		CustomerName: input.CustomerName,
		ProjectName:  input.ProjectName,
		Status:       QuotationStatusDraft,
		Remarks:      input.Remarks,
		ValidUntil:   input.ValidUntil,
		TotalAmount:  total,
		Items:        items,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&quotation).Error; err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotation", "create", input.QuotationNo, err)
		return nil, errors.New("cannot create quotation")
	}
	description := fmt.Sprintf("Quotation %s v%d created.", quotation.QuotationNo, quotation.Version)
	if err := createHistory(tx, "CREATE", quotation.ID, "quotations", nil, quotation, description); err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotation", "history", quotation.ID, err)
		return nil, errors.New("cannot create quotation")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotation", "commit", quotation.ID, err)
		return nil, errors.New("cannot create quotation")
	}
	return &quotation, nil
}

// SubmitQuotation moves a draft forward. Below the approval threshold it goes
// straight to APPROVED; above it, it parks in PENDING_APPROVAL for someone
// holding the approval capability.
func SubmitQuotation(ctx context.Context, id int) (*Quotation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	quotation, err := utils.FetchModel[Quotation](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuotationTransition(quotation.Status, QuotationStatusPendingApproval); err != nil {
		return nil, err
	}

	target := QuotationStatusPendingApproval
	if !RequiresApproval(DocumentTypeQuotation, quotation.TotalAmount, nil) {
		target = QuotationStatusApproved
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *quotation
	if err := tx.Model(&Quotation{}).Where("id = ?", id).Update("status", target).Error; err != nil {
		config.LogError(logger, "quotation.go", "SubmitQuotation", "update status", id, err)
		return nil, errors.New("cannot submit quotation")
	}
	quotation.Status = target
	description := fmt.Sprintf("Quotation %s v%d submitted (%s).", quotation.QuotationNo, quotation.Version, target)
	if err := createHistory(tx, "UPDATE", quotation.ID, "quotations", before, quotation, description); err != nil {
		config.LogError(logger, "quotation.go", "SubmitQuotation", "history", id, err)
		return nil, errors.New("cannot submit quotation")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "quotation.go", "SubmitQuotation", "commit", id, err)
		return nil, errors.New("cannot submit quotation")
	}
	return quotation, nil
}

// UpdateStatusQuotationInput carries the optional texts that become mandatory
// for particular targets: remarks when rejecting, a reason when losing.
type UpdateStatusQuotationInput struct {
	Status     QuotationStatus `json:"status" binding:"required"`
	Remarks    string          `json:"remarks"`
	LostReason string          `json:"lost_reason"`
}

// validateQuotationStatusInput enforces the texts that become mandatory for
// particular targets. Pure.
func validateQuotationStatusInput(input UpdateStatusQuotationInput) error {
	if input.Status == QuotationStatusRejected && input.Remarks == "" {
		return errors.New("remarks are required when rejecting a quotation")
	}
	if input.Status == QuotationStatusLost && input.LostReason == "" {
		return errors.New("a reason is required when marking a quotation as lost")
	}
	return nil
}

func UpdateStatusQuotation(ctx context.Context, id int, input UpdateStatusQuotationInput) (*Quotation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	quotation, err := utils.FetchModel[Quotation](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateQuotationTransition(quotation.Status, input.Status); err != nil {
		return nil, err
	}

	switch input.Status {
	case QuotationStatusApproved, QuotationStatusRejected:
		if !utils.GetCanApproveFromContext(ctx) {
			return nil, errors.New("approval permission required")
		}
	}
	if err := validateQuotationStatusInput(input); err != nil {
		return nil, err
	}

	// Best-effort cross-instance lock on the revision family for the WON
	// path; the bulk update below is still guarded by the transaction.
	if input.Status == QuotationStatusWon {
		release, lockErr := utils.ObtainDocumentLock(ctx, "lock:quotation-supersede", quotation.QuotationNo, "quotation.go", "UpdateStatusQuotation")
		if lockErr != nil {
			config.LogWarn(logger, "quotation.go", "UpdateStatusQuotation", quotation.QuotationNo, "proceeding without supersede lock")
		} else {
			defer release()
		}
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *quotation
	updates := map[string]interface{}{"status": input.Status}
	if input.Remarks != "" {
		updates["remarks"] = input.Remarks
	}
	if input.Status == QuotationStatusLost {
		updates["lost_reason"] = input.LostReason
	}
	if err := tx.Model(&Quotation{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "update status", id, err)
		return nil, errors.New("cannot update quotation status")
	}
	quotation.Status = input.Status
	if input.Remarks != "" {
		quotation.Remarks = input.Remarks
	}
	if input.Status == QuotationStatusLost {
		quotation.LostReason = input.LostReason
	}

	if input.Status == QuotationStatusWon {
		superseded, err := SupersedeSiblingRevisions(tx, quotation.QuotationNo, quotation.ID)
		if err != nil {
			config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "supersede siblings", quotation.QuotationNo, err)
			return nil, errors.New("cannot update quotation status")
		}
		event := RevisionEventRecord{
			QuotationNo:   quotation.QuotationNo,
			WonRevisionId: quotation.ID,
			Status:        RevisionEventStatusPending,
		}
		if err := tx.Create(&event).Error; err != nil {
			config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "create revision event", quotation.QuotationNo, err)
			return nil, errors.New("cannot update quotation status")
		}
		if superseded > 0 {
			description := fmt.Sprintf("Quotation %s v%d won; %d sibling revision(s) superseded.",
				quotation.QuotationNo, quotation.Version, superseded)
			if err := createHistory(tx, "UPDATE", quotation.ID, "quotations", nil, nil, description); err != nil {
				config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "supersede history", id, err)
				return nil, errors.New("cannot update quotation status")
			}
		}
	}

	description := fmt.Sprintf("Quotation %s v%d status changed to %s.", quotation.QuotationNo, quotation.Version, input.Status)
	if err := createHistory(tx, "UPDATE", quotation.ID, "quotations", before, quotation, description); err != nil {
		config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "history", id, err)
		return nil, errors.New("cannot update quotation status")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "quotation.go", "UpdateStatusQuotation", "commit", id, err)
		return nil, errors.New("cannot update quotation status")
	}
	return quotation, nil
}

// supersedeCandidateStatuses are the live statuses a losing sibling can be in
// when another revision of its family wins. Terminal outcomes (WON, LOST,
// CANCELLED) and drafts still being edited are left alone.
var supersedeCandidateStatuses = []QuotationStatus{
	QuotationStatusSent,
	QuotationStatusApproved,
	QuotationStatusExpired,
	QuotationStatusRevised,
}

// SupersedeTargets is the pure planner: given the family's revisions and the
// winner, it returns the ids to mark SUPERSEDED. Running it against an
// already-superseded family returns nothing, which is what makes the engine
// idempotent.
func SupersedeTargets(revisions []Quotation, wonRevisionId int) []int {
	var targets []int
	for _, rev := range revisions {
		if rev.ID == wonRevisionId {
			continue
		}
		for _, s := range supersedeCandidateStatuses {
			if rev.Status == s {
				targets = append(targets, rev.ID)
				break
			}
		}
	}
	return targets
}

// SupersedeSiblingRevisions bulk-updates every live sibling of the winning
// revision to SUPERSEDED. Runs inside the caller's transaction so the WON
// write and the supersede land atomically.
func SupersedeSiblingRevisions(tx *gorm.DB, quotationNo string, wonRevisionId int) (int64, error) {
	result := tx.Model(&Quotation{}).
		Where("quotation_no = ? AND id != ? AND status IN ?", quotationNo, wonRevisionId, supersedeCandidateStatuses).
		Update("status", QuotationStatusSuperseded)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CreateQuotationRevision clones a sent quotation into a new DRAFT revision of
// the same family and marks the source REVISED.
func CreateQuotationRevision(ctx context.Context, sourceId int, input *NewQuotation) (*Quotation, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	source, err := utils.FetchModel[Quotation](ctx, sourceId, "Items")
	if err != nil {
		return nil, err
	}
	if err := ValidateQuotationTransition(source.Status, QuotationStatusRevised); err != nil {
		return nil, err
	}

	// The revision inherits the family number; callers may override customer
	// details and must supply the revised items, held to the same rules as a
	// fresh quotation.
	if err := input.validate(); err != nil {
		return nil, err
	}

	var maxVersion int
	err = db.WithContext(ctx).Model(&Quotation{}).
		Where("quotation_no = ?", source.QuotationNo).
		Select("COALESCE(MAX(version), 0)").Scan(&maxVersion).Error
	if err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotationRevision", "max version", source.QuotationNo, err)
		return nil, errors.New("cannot create quotation revision")
	}

	customerName := source.CustomerName
	if input.CustomerName != "" {
		customerName = input.CustomerName
	}
	projectName := source.ProjectName
	if input.ProjectName != "" {
		projectName = input.ProjectName
	}

	builtItems, total := buildQuotationItems(input.Items)
	revision := Quotation{
		QuotationNo:  source.QuotationNo,
		Version:      maxVersion + 1,
		CustomerName: customerName,
		ProjectName:  projectName,
		Status:       QuotationStatusDraft,
		Remarks:      input.Remarks,
		ValidUntil:   input.ValidUntil,
		TotalAmount:  total,
		Items:        builtItems,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Model(&Quotation{}).Where("id = ?", sourceId).Update("status", QuotationStatusRevised).Error; err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotationRevision", "mark source revised", sourceId, err)
		return nil, errors.New("cannot create quotation revision")
	}
	if err := tx.Create(&revision).Error; err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotationRevision", "create revision", source.QuotationNo, err)
		return nil, errors.New("cannot create quotation revision")
	}
	description := fmt.Sprintf("Quotation %s revised: v%d supersedes-in-progress v%d.",
		source.QuotationNo, revision.Version, source.Version)
	if err := createHistory(tx, "CREATE", revision.ID, "quotations", source, revision, description); err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotationRevision", "history", sourceId, err)
		return nil, errors.New("cannot create quotation revision")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "quotation.go", "CreateQuotationRevision", "commit", sourceId, err)
		return nil, errors.New("cannot create quotation revision")
	}
	return &revision, nil
}

func DeleteQuotation(ctx context.Context, id int) error {
	logger := config.GetLogger()
	db := config.GetDB()

	result := CanDeleteQuotation(ctx, id)
	if !result.IsValid {
		return errors.New(result.ErrorMessages()[0])
	}
	quotation, err := utils.FetchModel[Quotation](ctx, id, "Items")
	if err != nil {
		return err
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Where("quotation_id = ?", id).Delete(&QuotationItem{}).Error; err != nil {
		config.LogError(logger, "quotation.go", "DeleteQuotation", "delete items", id, err)
		return errors.New("cannot delete quotation")
	}
	if err := tx.Delete(&Quotation{}, id).Error; err != nil {
		config.LogError(logger, "quotation.go", "DeleteQuotation", "delete", id, err)
		return errors.New("cannot delete quotation")
	}
	description := fmt.Sprintf("Quotation %s v%d deleted.", quotation.QuotationNo, quotation.Version)
	if err := createHistory(tx, "DELETE", id, "quotations", quotation, nil, description); err != nil {
		config.LogError(logger, "quotation.go", "DeleteQuotation", "history", id, err)
		return errors.New("cannot delete quotation")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "quotation.go", "DeleteQuotation", "commit", id, err)
		return errors.New("cannot delete quotation")
	}
	return nil
}
