package models

import (
	"log"

	"bitbucket.org/steelsources/pipetrade_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Quotation{}, &QuotationItem{},
		&PurchaseRequisition{}, &PurchaseRequisitionItem{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&SalesOrder{}, &SalesOrderItem{},
		&GoodsReceiptNote{}, &GoodsReceiptNoteLine{},
		&Inspection{}, &InventoryLot{}, &StockMovement{}, &NCR{},
		&SalesInvoice{}, &PaymentReceipt{},
		&PackingList{}, &PackingListLine{}, &DispatchNote{},
		&RevisionEventRecord{},
		&History{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
