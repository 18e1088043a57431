package models

import (
	"context"
	"sort"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/shopspring/decimal"
)

// An inventory lot is one heat's worth of accepted (or pending) pipe from a
// GRN line. Lots never merge; stock leaves by lot, which is what keeps heat
// number traceability intact from mill certificate to dispatch.

type InventoryLot struct {
	ID           int                `gorm:"primary_key" json:"id"`
	GrnLineId    int                `gorm:"index;not null" json:"grn_line_id"`
	HeatNo       string             `gorm:"size:100;index;not null" json:"heat_no"`
	MtcNo        string             `gorm:"size:100" json:"mtc_no"`
	MtcDate      time.Time          `gorm:"index;not null" json:"mtc_date"`
	MaterialSpec string             `gorm:"size:100;index;not null" json:"material_spec"`
	SizeInch     string             `gorm:"size:50" json:"size_inch"`
	Schedule     string             `gorm:"size:50" json:"schedule"`
	QuantityMtr  decimal.Decimal    `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr"`
	Status       InventoryLotStatus `gorm:"size:20;index;default:'UNDER_INSPECTION'" json:"status"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// sortLotsFIFO orders lots oldest first: MTC date ascending, heat number
// ascending as the tiebreak so the ordering is total and stable across runs.
func sortLotsFIFO(lots []InventoryLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].MtcDate.Equal(lots[j].MtcDate) {
			return lots[i].MtcDate.Before(lots[j].MtcDate)
		}
		return lots[i].HeatNo < lots[j].HeatNo
	})
}

// ValidateFIFOSelection checks a requested set of heat numbers against the
// available lots for one material. The rule is advisory: picking newer stock
// while older heats sit on the shelf produces a warning, not an error, because
// a customer spec can legitimately force a newer heat. The result is invalid
// only when there is nothing to pick from at all. Pure.
func ValidateFIFOSelection(available []InventoryLot, requestedHeatNos []string) ValidationResult {
	result := ValidResult()
	if len(available) == 0 {
		result.AddError(Violation{Kind: ViolationNoStock})
		return result
	}
	if len(requestedHeatNos) == 0 {
		return result
	}

	lots := make([]InventoryLot, len(available))
	copy(lots, available)
	sortLotsFIFO(lots)

	requested := map[string]bool{}
	for _, heat := range requestedHeatNos {
		requested[heat] = true
	}

	// The should-use set is the first len(requestedHeatNos) distinct heats in
	// FIFO order. Any requested heat outside it means older stock was skipped.
	shouldUse := make([]string, 0, len(requestedHeatNos))
	seen := map[string]bool{}
	for _, lot := range lots {
		if seen[lot.HeatNo] {
			continue
		}
		seen[lot.HeatNo] = true
		shouldUse = append(shouldUse, lot.HeatNo)
		if len(shouldUse) == len(requestedHeatNos) {
			break
		}
	}

	shouldUseSet := map[string]bool{}
	for _, heat := range shouldUse {
		shouldUseSet[heat] = true
	}
	for _, heat := range requestedHeatNos {
		if !shouldUseSet[heat] {
			result.AddWarning(Violation{
				Kind:  ViolationFIFOOrder,
				Heats: shouldUse,
			})
			break
		}
	}
	return result
}

// ValidateFIFOReservation loads the available (ACCEPTED) lots for one
// material spec and size and runs the FIFO check against the requested heats.
// Pools never mix sizes: an 8" heat is no substitute for a 6" requirement,
// so a size with no accepted stock reports no stock even when the same spec
// has lots in other sizes.
func ValidateFIFOReservation(ctx context.Context, materialSpec, sizeInch string, requestedHeatNos []string) ValidationResult {
	logger := config.GetLogger()
	db := config.GetDB()

	var lots []InventoryLot
	err := db.WithContext(ctx).
		Where("material_spec = ? AND size_inch = ? AND status = ? AND quantity_mtr > 0",
			materialSpec, sizeInch, InventoryLotStatusAccepted).
		Find(&lots).Error
	if err != nil {
		config.LogError(logger, "inventoryLot.go", "ValidateFIFOReservation", "load lots", materialSpec, err)
		return SystemErrorResult()
	}
	return ValidateFIFOSelection(lots, utils.UniqueSlice(requestedHeatNos))
}

// AvailableLotsFIFO returns the accepted lots for one material spec and size
// in FIFO order.
func AvailableLotsFIFO(ctx context.Context, materialSpec, sizeInch string) ([]InventoryLot, error) {
	db := config.GetDB()

	var lots []InventoryLot
	err := db.WithContext(ctx).
		Where("material_spec = ? AND size_inch = ? AND status = ? AND quantity_mtr > 0",
			materialSpec, sizeInch, InventoryLotStatusAccepted).
		Find(&lots).Error
	if err != nil {
		return nil, err
	}
	sortLotsFIFO(lots)
	return lots, nil
}
