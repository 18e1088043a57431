package models

import (
	"time"
)

// RevisionEventRecord is the outbox row written alongside a WON commit. The
// supersede itself happens in the same transaction; the record exists so the
// reconciliation job can re-verify and repair the revision family if anything
// slipped past (manual data fixes, partial restores).
type RevisionEventRecord struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	QuotationNo   string              `gorm:"size:100;index;not null" json:"quotation_no"`
	WonRevisionId int                 `gorm:"index;not null" json:"won_revision_id"`
	Status        RevisionEventStatus `gorm:"size:20;index;default:'PENDING'" json:"status"`
	Attempts      int                 `gorm:"default:0" json:"attempts"`
	LastError     string              `gorm:"type:text" json:"last_error"`
	ProcessedAt   *time.Time          `json:"processed_at"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}
