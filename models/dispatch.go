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

// Dispatch is two documents: a packing list that picks lots for a sales order
// and a dispatch note that puts a confirmed packing list on a truck. Lot
// picking goes through the reservation engine before the list is confirmed.

type PackingList struct {
	ID           int               `gorm:"primary_key" json:"id"`
	PlNo         string            `gorm:"size:100;uniqueIndex;not null" json:"pl_no" binding:"required"`
	SalesOrderId *int              `gorm:"index" json:"sales_order_id"`
	Status       PackingListStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	Remarks      string            `gorm:"type:text" json:"remarks"`
	Lines        []PackingListLine `gorm:"foreignKey:PackingListId" json:"lines"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type PackingListLine struct {
	ID               int             `gorm:"primary_key" json:"id"`
	PackingListId    int             `gorm:"index;not null" json:"packing_list_id"`
	SalesOrderItemId *int            `gorm:"index" json:"sales_order_item_id"`
	InventoryLotId   int             `gorm:"index;not null" json:"inventory_lot_id" binding:"required"`
	HeatNo           string          `gorm:"size:100;not null" json:"heat_no"`
	QuantityMtr      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_mtr" binding:"required"`
}

type DispatchNote struct {
	ID            int            `gorm:"primary_key" json:"id"`
	DnNo          string         `gorm:"size:100;uniqueIndex;not null" json:"dn_no" binding:"required"`
	PackingListId int            `gorm:"index;not null" json:"packing_list_id" binding:"required"`
	VehicleNo     string         `gorm:"size:50" json:"vehicle_no"`
	DriverName    string         `gorm:"size:100" json:"driver_name"`
	Status        DispatchStatus `gorm:"size:20;index;default:'DRAFT'" json:"status"`
	DispatchedAt  *time.Time     `json:"dispatched_at"`
	DeliveredAt   *time.Time     `json:"delivered_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPackingList struct {
	PlNo         string               `json:"pl_no" binding:"required"`
	SalesOrderId *int                 `json:"sales_order_id" binding:"required"`
	Remarks      string               `json:"remarks"`
	Lines        []NewPackingListLine `json:"lines" binding:"required"`
}

type NewPackingListLine struct {
	SalesOrderItemId *int            `json:"sales_order_item_id"`
	InventoryLotId   int             `json:"inventory_lot_id" binding:"required"`
	QuantityMtr      decimal.Decimal `json:"quantity_mtr" binding:"required"`
}

func CreatePackingList(ctx context.Context, input *NewPackingList) (*PackingList, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if len(input.Lines) == 0 {
		return nil, errors.New("packing list must have at least one line")
	}
	if err := utils.ValidateUnique[PackingList](ctx, "pl_no", input.PlNo); err != nil {
		return nil, err
	}
	if trace := ValidateDispatchTraceability(ctx, input.SalesOrderId); !trace.IsValid {
		return nil, errors.New(trace.ErrorMessages()[0])
	}

	lines := make([]PackingListLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if line.QuantityMtr.LessThanOrEqual(decimal.Zero) {
			return nil, errors.New("line quantity must be positive")
		}
		lot, err := utils.FetchModel[InventoryLot](ctx, line.InventoryLotId)
		if err != nil {
			return nil, fmt.Errorf("inventory lot %d not found", line.InventoryLotId)
		}
		if lot.Status != InventoryLotStatusAccepted {
			return nil, fmt.Errorf("lot with heat no %s is %s; only accepted stock can be packed", lot.HeatNo, lot.Status)
		}
		if line.QuantityMtr.GreaterThan(lot.QuantityMtr) {
			return nil, fmt.Errorf("lot with heat no %s has only %s mtr available", lot.HeatNo, lot.QuantityMtr)
		}
		lines = append(lines, PackingListLine{
			SalesOrderItemId: line.SalesOrderItemId,
			InventoryLotId:   line.InventoryLotId,
			HeatNo:           lot.HeatNo,
			QuantityMtr:      line.QuantityMtr,
		})
	}

	pl := PackingList{
		PlNo:         input.PlNo,
		SalesOrderId: input.SalesOrderId,
		Status:       PackingListStatusDraft,
		Remarks:      input.Remarks,
		Lines:        lines,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&pl).Error; err != nil {
		config.LogError(logger, "dispatch.go", "CreatePackingList", "create", input.PlNo, err)
		return nil, errors.New("cannot create packing list")
	}
	description := fmt.Sprintf("Packing list %s created.", pl.PlNo)
	if err := createHistory(tx, "CREATE", pl.ID, "packing_lists", nil, pl, description); err != nil {
		config.LogError(logger, "dispatch.go", "CreatePackingList", "history", pl.ID, err)
		return nil, errors.New("cannot create packing list")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "dispatch.go", "CreatePackingList", "commit", pl.ID, err)
		return nil, errors.New("cannot create packing list")
	}
	return &pl, nil
}

type NewDispatchNote struct {
	DnNo          string `json:"dn_no" binding:"required"`
	PackingListId int    `json:"packing_list_id" binding:"required"`
	VehicleNo     string `json:"vehicle_no"`
	DriverName    string `json:"driver_name"`
}

func CreateDispatchNote(ctx context.Context, input *NewDispatchNote) (*DispatchNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	if err := utils.ValidateUnique[DispatchNote](ctx, "dn_no", input.DnNo); err != nil {
		return nil, err
	}
	pl, err := utils.FetchModel[PackingList](ctx, input.PackingListId)
	if err != nil {
		return nil, err
	}
	if pl.Status != PackingListStatusConfirmed {
		return nil, fmt.Errorf("packing list %s is not confirmed", pl.PlNo)
	}

	dn := DispatchNote{
		DnNo:          input.DnNo,
		PackingListId: input.PackingListId,
		VehicleNo:     input.VehicleNo,
		DriverName:    input.DriverName,
		Status:        DispatchStatusDraft,
	}

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := tx.Create(&dn).Error; err != nil {
		config.LogError(logger, "dispatch.go", "CreateDispatchNote", "create", input.DnNo, err)
		return nil, errors.New("cannot create dispatch note")
	}
	description := fmt.Sprintf("Dispatch note %s created for packing list %s.", dn.DnNo, pl.PlNo)
	if err := createHistory(tx, "CREATE", dn.ID, "dispatch_notes", nil, dn, description); err != nil {
		config.LogError(logger, "dispatch.go", "CreateDispatchNote", "history", dn.ID, err)
		return nil, errors.New("cannot create dispatch note")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "dispatch.go", "CreateDispatchNote", "commit", dn.ID, err)
		return nil, errors.New("cannot create dispatch note")
	}
	return &dn, nil
}

// MarkDispatched sends the truck out: the note moves to DISPATCHED, every
// reserved lot on its packing list is marked DISPATCHED and the dispatched
// quantities roll up to the sales order.
func MarkDispatched(ctx context.Context, id int) (*DispatchNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	dn, err := utils.FetchModel[DispatchNote](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateDispatchTransition(dn.Status, DispatchStatusDispatched); err != nil {
		return nil, err
	}
	pl, err := utils.FetchModel[PackingList](ctx, dn.PackingListId, "Lines")
	if err != nil {
		return nil, err
	}

	now := time.Now()

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *dn
	if err := tx.Model(&DispatchNote{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        DispatchStatusDispatched,
		"dispatched_at": now,
	}).Error; err != nil {
		config.LogError(logger, "dispatch.go", "MarkDispatched", "update status", id, err)
		return nil, errors.New("cannot mark dispatched")
	}
	dn.Status = DispatchStatusDispatched
	dn.DispatchedAt = &now

	dispatchedByLine := map[int]decimal.Decimal{}
	for _, line := range pl.Lines {
		if err := tx.Model(&InventoryLot{}).Where("id = ?", line.InventoryLotId).
			Update("status", InventoryLotStatusDispatched).Error; err != nil {
			config.LogError(logger, "dispatch.go", "MarkDispatched", "update lot", line.InventoryLotId, err)
			return nil, errors.New("cannot mark dispatched")
		}
		movement := StockMovement{
			InventoryLotId: line.InventoryLotId,
			HeatNo:         line.HeatNo,
			MovementType:   StockMovementDispatch,
			QuantityMtr:    line.QuantityMtr,
			BalanceMtr:     decimal.Zero,
			ReferenceType:  "dispatch_notes",
			ReferenceId:    dn.ID,
		}
		if err := RecordStockMovement(tx, movement); err != nil {
			config.LogError(logger, "dispatch.go", "MarkDispatched", "stock movement", line.InventoryLotId, err)
			return nil, errors.New("cannot mark dispatched")
		}
		if line.SalesOrderItemId != nil {
			dispatchedByLine[*line.SalesOrderItemId] = dispatchedByLine[*line.SalesOrderItemId].Add(line.QuantityMtr)
		}
	}
	if pl.SalesOrderId != nil && len(dispatchedByLine) > 0 {
		if err := applyDispatchToSalesOrder(tx, *pl.SalesOrderId, dispatchedByLine); err != nil {
			config.LogError(logger, "dispatch.go", "MarkDispatched", "apply dispatch to so", *pl.SalesOrderId, err)
			return nil, errors.New("cannot mark dispatched")
		}
	}

	description := fmt.Sprintf("Dispatch note %s dispatched.", dn.DnNo)
	if err := createHistory(tx, "UPDATE", dn.ID, "dispatch_notes", before, dn, description); err != nil {
		config.LogError(logger, "dispatch.go", "MarkDispatched", "history", id, err)
		return nil, errors.New("cannot mark dispatched")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "dispatch.go", "MarkDispatched", "commit", id, err)
		return nil, errors.New("cannot mark dispatched")
	}
	return dn, nil
}

func MarkDelivered(ctx context.Context, id int) (*DispatchNote, error) {
	logger := config.GetLogger()
	db := config.GetDB()

	dn, err := utils.FetchModel[DispatchNote](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateDispatchTransition(dn.Status, DispatchStatusDelivered); err != nil {
		return nil, err
	}

	now := time.Now()

	tx := db.WithContext(ctx).Begin()
	defer tx.Rollback()

	before := *dn
	if err := tx.Model(&DispatchNote{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       DispatchStatusDelivered,
		"delivered_at": now,
	}).Error; err != nil {
		config.LogError(logger, "dispatch.go", "MarkDelivered", "update status", id, err)
		return nil, errors.New("cannot mark delivered")
	}
	dn.Status = DispatchStatusDelivered
	dn.DeliveredAt = &now
	description := fmt.Sprintf("Dispatch note %s delivered.", dn.DnNo)
	if err := createHistory(tx, "UPDATE", dn.ID, "dispatch_notes", before, dn, description); err != nil {
		config.LogError(logger, "dispatch.go", "MarkDelivered", "history", id, err)
		return nil, errors.New("cannot mark delivered")
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "dispatch.go", "MarkDelivered", "commit", id, err)
		return nil, errors.New("cannot mark delivered")
	}
	return dn, nil
}
