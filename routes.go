package main

import (
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)
	r.POST("/auth/logout", logoutHandler)
	r.POST("/users", createUserHandler)

	r.POST("/quotations", createQuotationHandler)
	r.GET("/quotations/:id", getQuotationHandler)
	r.POST("/quotations/:id/submit", submitQuotationHandler)
	r.POST("/quotations/:id/status", updateQuotationStatusHandler)
	r.POST("/quotations/:id/revise", reviseQuotationHandler)
	r.GET("/quotations/:id/can-delete", canDeleteQuotationHandler)
	r.DELETE("/quotations/:id", deleteQuotationHandler)

	r.POST("/purchase-requisitions", createPurchaseRequisitionHandler)
	r.POST("/purchase-requisitions/:id/submit", submitPurchaseRequisitionHandler)
	r.POST("/purchase-requisitions/:id/status", updatePurchaseRequisitionStatusHandler)

	r.POST("/purchase-orders", createPurchaseOrderHandler)
	r.POST("/purchase-orders/:id/open", openPurchaseOrderHandler)
	r.POST("/purchase-orders/:id/status", updatePurchaseOrderStatusHandler)
	r.GET("/purchase-orders/:id/can-delete", canDeletePurchaseOrderHandler)
	r.DELETE("/purchase-orders/:id", deletePurchaseOrderHandler)

	r.POST("/sales-orders", createSalesOrderHandler)
	r.POST("/sales-orders/:id/status", updateSalesOrderStatusHandler)
	r.GET("/sales-orders/:id/can-delete", canDeleteSalesOrderHandler)
	r.DELETE("/sales-orders/:id", deleteSalesOrderHandler)

	r.POST("/grns", createGoodsReceiptNoteHandler)
	r.POST("/grns/:id/post", postGoodsReceiptNoteHandler)
	r.POST("/grns/:id/complete-qc", completeQualityCheckHandler)
	r.GET("/grns/:id/can-delete", canDeleteGoodsReceiptNoteHandler)
	r.DELETE("/grns/:id", deleteGoodsReceiptNoteHandler)

	r.POST("/inspections", createInspectionHandler)
	r.POST("/inspections/:id/result", recordInspectionResultHandler)

	r.POST("/ncrs", createNCRHandler)
	r.POST("/ncrs/:id/status", updateNCRStatusHandler)
	r.POST("/ncrs/:id/evidence", addNCREvidenceHandler)

	r.POST("/invoices", createSalesInvoiceHandler)
	r.POST("/invoices/:id/status", updateSalesInvoiceStatusHandler)
	r.GET("/invoices/:id/can-delete", canDeleteSalesInvoiceHandler)
	r.DELETE("/invoices/:id", deleteSalesInvoiceHandler)

	r.POST("/payment-receipts", createPaymentReceiptHandler)

	r.POST("/packing-lists", createPackingListHandler)
	r.POST("/packing-lists/:id/reserve", reservePackingListHandler)

	r.POST("/dispatch-notes", createDispatchNoteHandler)
	r.POST("/dispatch-notes/:id/dispatch", markDispatchedHandler)
	r.POST("/dispatch-notes/:id/deliver", markDeliveredHandler)

	r.GET("/inventory/lots", availableLotsHandler)
	r.POST("/inventory/fifo-check", fifoCheckHandler)

	r.GET("/validation/attachments", validateAttachmentsHandler)
	r.GET("/validation/transitions", allowedTransitionsHandler)

	// Ops tooling: run a supersede reconciliation pass on demand.
	r.POST("/internal/ops/supersede/reconcile", reconcileSupersedeHandler)
}
