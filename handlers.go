package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/steelsources/pipetrade_backend/config"
	"bitbucket.org/steelsources/pipetrade_backend/models"
	"bitbucket.org/steelsources/pipetrade_backend/utils"
	"bitbucket.org/steelsources/pipetrade_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(verrs)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if err == utils.ErrorRecordNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

/* auth */

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := models.GetUserByUsername(c.Request.Context(), input.Username)
	if err != nil || utils.ComparePassword(user.Password, input.Password) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if user.IsActive == nil || !*user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})
		return
	}
	token := uuid.NewString()
	if err := config.SetRedisValue("Token:"+token, user.Username, 24*time.Hour); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "name": user.Name, "can_approve": user.CanApprove})
}

func logoutHandler(c *gin.Context) {
	token := c.Request.Header.Get("token")
	if token != "" {
		_ = config.RemoveRedisKey("Token:" + token)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func createUserHandler(c *gin.Context) {
	username, _ := utils.GetUsernameFromContext(c.Request.Context())
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	actor, err := models.GetUserByUsername(c.Request.Context(), username)
	if err != nil || actor.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	var input models.NewUser
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

/* quotations */

func createQuotationHandler(c *gin.Context) {
	var input models.NewQuotation
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	quotation, err := models.CreateQuotation(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, quotation)
}

func getQuotationHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	quotation, err := utils.FetchModel[models.Quotation](c.Request.Context(), id, "Items")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quotation)
}

func submitQuotationHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	quotation, err := models.SubmitQuotation(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quotation)
}

func updateQuotationStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.UpdateStatusQuotationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	quotation, err := models.UpdateStatusQuotation(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quotation)
}

func reviseQuotationHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.NewQuotation
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	revision, err := models.CreateQuotationRevision(c.Request.Context(), id, &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, revision)
}

func canDeleteQuotationHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CanDeleteQuotation(c.Request.Context(), id))
}

func deleteQuotationHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteQuotation(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

/* purchase requisitions */

func createPurchaseRequisitionHandler(c *gin.Context) {
	var input models.NewPurchaseRequisition
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	pr, err := models.CreatePurchaseRequisition(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pr)
}

func submitPurchaseRequisitionHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	pr, err := models.SubmitPurchaseRequisition(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

func updatePurchaseRequisitionStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.UpdateStatusPurchaseRequisitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	pr, err := models.UpdateStatusPurchaseRequisition(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pr)
}

/* purchase orders */

func createPurchaseOrderHandler(c *gin.Context) {
	var input models.NewPurchaseOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	po, err := models.CreatePurchaseOrder(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

func openPurchaseOrderHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	po, err := models.OpenPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

func updatePurchaseOrderStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	po, err := models.UpdateStatusPurchaseOrder(c.Request.Context(), id, models.PurchaseOrderStatus(input.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func canDeletePurchaseOrderHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CanDeletePurchaseOrder(c.Request.Context(), id))
}

func deletePurchaseOrderHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeletePurchaseOrder(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

/* sales orders */

func createSalesOrderHandler(c *gin.Context) {
	var input models.NewSalesOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	so, err := models.CreateSalesOrder(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, so)
}

func updateSalesOrderStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	so, err := models.UpdateStatusSalesOrder(c.Request.Context(), id, models.SalesOrderStatus(input.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, so)
}

func canDeleteSalesOrderHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CanDeleteSalesOrder(c.Request.Context(), id))
}

func deleteSalesOrderHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteSalesOrder(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

/* goods receipt notes */

func createGoodsReceiptNoteHandler(c *gin.Context) {
	var input models.NewGoodsReceiptNote
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	grn, err := models.CreateGoodsReceiptNote(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, grn)
}

func postGoodsReceiptNoteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	grn, err := models.PostGoodsReceiptNote(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grn)
}

func completeQualityCheckHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	grn, err := models.CompleteQualityCheck(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, grn)
}

func canDeleteGoodsReceiptNoteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CanDeleteGoodsReceiptNote(c.Request.Context(), id))
}

func deleteGoodsReceiptNoteHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := models.DeleteGoodsReceiptNote(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

/* inspections */

func createInspectionHandler(c *gin.Context) {
	var input models.NewInspection
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	inspection, err := models.CreateInspection(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inspection)
}

func recordInspectionResultHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.RecordInspectionResultInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	inspection, err := models.RecordInspectionResult(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inspection)
}

/* ncrs */

func createNCRHandler(c *gin.Context) {
	var input models.NewNCR
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	ncr, err := models.CreateNCR(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, ncr)
}

func updateNCRStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input models.UpdateStatusNCRInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	ncr, err := models.UpdateStatusNCR(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ncr)
}

type evidenceInput struct {
	Paths []string `json:"paths" binding:"required"`
}

func addNCREvidenceHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input evidenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	ncr, err := models.AddNCREvidence(c.Request.Context(), id, input.Paths)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ncr)
}

/* invoices and payments */

func createSalesInvoiceHandler(c *gin.Context) {
	var input models.NewSalesInvoice
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	invoice, err := models.CreateSalesInvoice(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func updateSalesInvoiceStatusHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	invoice, err := models.UpdateStatusSalesInvoice(c.Request.Context(), id, models.SalesInvoiceStatus(input.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func canDeleteSalesInvoiceHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.CanDeleteSalesInvoice(c.Request.Context(), id))
}

func deleteSalesInvoiceHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	// Always refused; the response carries the reasons.
	err := models.DeleteSalesInvoice(c.Request.Context(), id)
	fail(c, err)
}

func createPaymentReceiptHandler(c *gin.Context) {
	var input models.NewPaymentReceipt
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	receipt, err := models.CreatePaymentReceipt(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

/* packing and dispatch */

func createPackingListHandler(c *gin.Context) {
	var input models.NewPackingList
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	pl, err := models.CreatePackingList(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pl)
}

func reservePackingListHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	pl, err := workflow.ReservePackingList(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pl)
}

func createDispatchNoteHandler(c *gin.Context) {
	var input models.NewDispatchNote
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	dn, err := models.CreateDispatchNote(c.Request.Context(), &input)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, dn)
}

func markDispatchedHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	dn, err := models.MarkDispatched(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dn)
}

func markDeliveredHandler(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	dn, err := models.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dn)
}

/* inventory and validation */

func availableLotsHandler(c *gin.Context) {
	spec := c.Query("material_spec")
	size := c.Query("size_inch")
	if spec == "" || size == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "material_spec and size_inch are required"})
		return
	}
	lots, err := models.AvailableLotsFIFO(c.Request.Context(), spec, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, lots)
}

type fifoCheckInput struct {
	MaterialSpec string   `json:"material_spec" binding:"required"`
	SizeInch     string   `json:"size_inch" binding:"required"`
	HeatNos      []string `json:"heat_nos"`
}

func fifoCheckHandler(c *gin.Context) {
	var input fifoCheckInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ValidateFIFOReservation(c.Request.Context(), input.MaterialSpec, input.SizeInch, input.HeatNos))
}

func validateAttachmentsHandler(c *gin.Context) {
	entityType := models.AttachmentEntityType(c.Query("entity_type"))
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	c.JSON(http.StatusOK, models.ValidateMandatoryAttachments(c.Request.Context(), entityType, id))
}

func allowedTransitionsHandler(c *gin.Context) {
	docType := models.DocumentType(c.Query("document_type"))
	status := c.Query("status")
	c.JSON(http.StatusOK, gin.H{
		"allowed":     models.AllowedTransitions(docType, status),
		"is_terminal": models.IsTerminalStatus(docType, status),
	})
}

func reconcileSupersedeHandler(c *gin.Context) {
	username, _ := utils.GetUsernameFromContext(c.Request.Context())
	if username == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	actor, err := models.GetUserByUsername(c.Request.Context(), username)
	if err != nil || actor.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	workflow.NewSupersedeReconciler(config.GetDB(), config.GetLogger()).Run(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
