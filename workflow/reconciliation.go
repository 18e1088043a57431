package workflow

import (
	"context"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupersedeReconciler re-runs the revision supersede for every pending or
// failed revision event and sweeps for families where a WON revision still
// has live siblings. The supersede itself happens inside the WON commit, so
// in the normal case this job only marks events PROCESSED with zero rows
// touched; it exists for the abnormal cases (manual data edits, partial
// restores).
type SupersedeReconciler struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	ReconcilerID string

	BatchSize   int
	MaxAttempts int
}

func NewSupersedeReconciler(db *gorm.DB, logger *logrus.Logger) *SupersedeReconciler {
	return &SupersedeReconciler{
		DB:           db,
		Logger:       logger,
		ReconcilerID: uuid.NewString(),
		BatchSize:    50,
		MaxAttempts:  10,
	}
}

// Run executes one reconciliation pass. A best-effort cross-instance lock
// keeps multiple replicas from double-running; the per-event work is
// idempotent either way.
func (r *SupersedeReconciler) Run(ctx context.Context) {
	locker := config.GetRedisLock()
	if locker != nil {
		lock, err := locker.Obtain(ctx, "lock:supersede-reconcile", 60*time.Second, nil)
		if err != nil {
			r.Logger.WithFields(logrus.Fields{
				"reconciler_id": r.ReconcilerID,
			}).Debug("supersede reconcile lock held elsewhere; skipping pass")
			return
		}
		defer func() { _ = lock.Release(ctx) }()
	}

	r.processEvents(ctx)
	r.sweepFamilies(ctx)
}

func (r *SupersedeReconciler) processEvents(ctx context.Context) {
	var events []models.RevisionEventRecord
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ? AND attempts < ?",
			[]models.RevisionEventStatus{models.RevisionEventStatusPending, models.RevisionEventStatusFailed},
			r.MaxAttempts).
		Order("id").
		Limit(r.BatchSize).
		Find(&events).Error
	if err != nil {
		config.LogError(r.Logger, "reconciliation.go", "processEvents", "load events", nil, err)
		return
	}

	for _, event := range events {
		r.processOne(ctx, event)
	}
}

func (r *SupersedeReconciler) processOne(ctx context.Context, event models.RevisionEventRecord) {
	tx := r.DB.WithContext(ctx).Begin()
	defer tx.Rollback()

	superseded, err := models.SupersedeSiblingRevisions(tx, event.QuotationNo, event.WonRevisionId)
	if err != nil {
		tx.Rollback()
		r.markFailed(ctx, event, err)
		return
	}

	now := time.Now()
	err = tx.Model(&models.RevisionEventRecord{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
		"status":       models.RevisionEventStatusProcessed,
		"attempts":     gorm.Expr("attempts + 1"),
		"last_error":   "",
		"processed_at": now,
	}).Error
	if err != nil {
		tx.Rollback()
		r.markFailed(ctx, event, err)
		return
	}
	if err := tx.Commit().Error; err != nil {
		r.markFailed(ctx, event, err)
		return
	}

	if superseded > 0 {
		r.Logger.WithFields(logrus.Fields{
			"reconciler_id": r.ReconcilerID,
			"quotation_no":  event.QuotationNo,
			"superseded":    superseded,
		}).Warn("revision event reconciliation superseded rows the original commit missed")
	}
}

func (r *SupersedeReconciler) markFailed(ctx context.Context, event models.RevisionEventRecord, cause error) {
	config.LogError(r.Logger, "reconciliation.go", "processOne", event.QuotationNo, event.ID, cause)
	err := r.DB.WithContext(ctx).Model(&models.RevisionEventRecord{}).Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"status":     models.RevisionEventStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": cause.Error(),
		}).Error
	if err != nil {
		config.LogError(r.Logger, "reconciliation.go", "markFailed", event.QuotationNo, event.ID, err)
	}
}

// sweepFamilies catches drift with no event row at all: any quotation family
// holding a WON revision alongside still-live siblings gets repaired.
func (r *SupersedeReconciler) sweepFamilies(ctx context.Context) {
	var wonRevisions []models.Quotation
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.QuotationStatusWon).
		Find(&wonRevisions).Error
	if err != nil {
		config.LogError(r.Logger, "reconciliation.go", "sweepFamilies", "load won revisions", nil, err)
		return
	}

	for _, won := range wonRevisions {
		tx := r.DB.WithContext(ctx).Begin()
		superseded, err := models.SupersedeSiblingRevisions(tx, won.QuotationNo, won.ID)
		if err != nil {
			tx.Rollback()
			config.LogError(r.Logger, "reconciliation.go", "sweepFamilies", won.QuotationNo, won.ID, err)
			continue
		}
		if err := tx.Commit().Error; err != nil {
			config.LogError(r.Logger, "reconciliation.go", "sweepFamilies", won.QuotationNo, won.ID, err)
			continue
		}
		if superseded > 0 {
			r.Logger.WithFields(logrus.Fields{
				"reconciler_id": r.ReconcilerID,
				"quotation_no":  won.QuotationNo,
				"superseded":    superseded,
			}).Warn("family sweep superseded live siblings of a won revision")
		}
	}
}
