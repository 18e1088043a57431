package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// ReservePackingList confirms a draft packing list and reserves its stock.
// FIFO is checked per material spec first; by default an out-of-order pick
// only logs a warning, with FIFO_HARD_BLOCK upgrading it to a refusal. Lot
// rows are locked FOR UPDATE so concurrent confirms cannot oversell a lot.
func ReservePackingList(ctx context.Context, packingListId int) (*models.PackingList, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	pl, err := utils.FetchModel[models.PackingList](ctx, packingListId, "Lines")
	if err != nil {
		return nil, err
	}
	if pl.Status != models.PackingListStatusDraft {
		return nil, fmt.Errorf("packing list %s is already %s", pl.PlNo, pl.Status)
	}
	if len(pl.Lines) == 0 {
		return nil, errors.New("packing list has no lines")
	}

	// Group the requested heats by material spec and size for the FIFO check;
	// each (spec, size) combination is its own pool.
	type poolKey struct {
		materialSpec string
		sizeInch     string
	}
	heatsByPool := map[poolKey][]string{}
	for _, line := range pl.Lines {
		lot, err := utils.FetchModel[models.InventoryLot](ctx, line.InventoryLotId)
		if err != nil {
			return nil, fmt.Errorf("inventory lot %d not found", line.InventoryLotId)
		}
		key := poolKey{materialSpec: lot.MaterialSpec, sizeInch: lot.SizeInch}
		heatsByPool[key] = append(heatsByPool[key], lot.HeatNo)
	}
	for key, heats := range heatsByPool {
		result := models.ValidateFIFOReservation(ctx, key.materialSpec, key.sizeInch, heats)
		if !result.IsValid {
			return nil, errors.New(result.ErrorMessages()[0])
		}
		if msgs := result.WarningMessages(); len(msgs) > 0 {
			if config.FIFOHardBlock() {
				return nil, errors.New(msgs[0])
			}
			config.LogWarn(logger, "reservation.go", "ReservePackingList", key.materialSpec+" "+key.sizeInch, msgs[0])
		}
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	for _, line := range pl.Lines {
		var lot models.InventoryLot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lot, line.InventoryLotId).Error; err != nil {
			config.LogError(logger, "reservation.go", "ReservePackingList", "lock lot", line.InventoryLotId, err)
			return nil, errors.New("cannot reserve packing list")
		}
		if lot.Status != models.InventoryLotStatusAccepted {
			return nil, fmt.Errorf("lot with heat no %s is %s; only accepted stock can be reserved", lot.HeatNo, lot.Status)
		}
		if line.QuantityMtr.GreaterThan(lot.QuantityMtr) {
			return nil, fmt.Errorf("lot with heat no %s has only %s mtr available", lot.HeatNo, lot.QuantityMtr)
		}

		remaining := lot.QuantityMtr.Sub(line.QuantityMtr)
		updates := map[string]interface{}{"quantity_mtr": remaining}
		// A drained lot flips to RESERVED so it stops showing up as pickable.
		if remaining.Equal(decimal.Zero) {
			updates["status"] = models.InventoryLotStatusReserved
		}
		if err := tx.Model(&models.InventoryLot{}).Where("id = ?", lot.ID).Updates(updates).Error; err != nil {
			config.LogError(logger, "reservation.go", "ReservePackingList", "update lot", lot.ID, err)
			return nil, errors.New("cannot reserve packing list")
		}
		movement := models.StockMovement{
			InventoryLotId: lot.ID,
			HeatNo:         lot.HeatNo,
			MovementType:   models.StockMovementReserve,
			QuantityMtr:    line.QuantityMtr,
			BalanceMtr:     remaining,
			ReferenceType:  "packing_lists",
			ReferenceId:    packingListId,
		}
		if err := models.RecordStockMovement(tx, movement); err != nil {
			config.LogError(logger, "reservation.go", "ReservePackingList", "stock movement", lot.ID, err)
			return nil, errors.New("cannot reserve packing list")
		}
	}

	if err := tx.Model(&models.PackingList{}).Where("id = ?", packingListId).
		Update("status", models.PackingListStatusConfirmed).Error; err != nil {
		config.LogError(logger, "reservation.go", "ReservePackingList", "confirm", packingListId, err)
		return nil, errors.New("cannot reserve packing list")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "reservation.go", "ReservePackingList", "commit", packingListId, err)
		return nil, errors.New("cannot reserve packing list")
	}
	pl.Status = models.PackingListStatusConfirmed
	return pl, nil
}
