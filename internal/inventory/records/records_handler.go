package records

import (
	"net/http"

	"github.com/DavisKoreal/Emay/internal/inventory/listview"
	"github.com/DavisKoreal/Emay/internal/inventory/scan"
	custom_error "github.com/DavisKoreal/Emay/pkg/errors"
	"github.com/DavisKoreal/Emay/pkg/models"
	"github.com/DavisKoreal/Emay/pkg/security"

	"github.com/gin-gonic/gin"
)

// RecordStore is the store adapter surface the handler depends on.
type RecordStore interface {
	CreateRecord(shopPhone string, record models.InventoryRecord) (*models.InventoryRecord, error)
	GetRecord(shopPhone, imei string) (*models.InventoryRecord, error)
	UpdateRecord(shopPhone, imei string, patch models.RecordPatch) (*models.InventoryRecord, error)
	DeleteRecord(shopPhone, imei string) error
	ListAll(shopPhone string) ([]models.InventoryRecord, error)
}

type RecordsHandler struct {
	store RecordStore
	views *listview.Registry
}

func NewRecordsHandler(store RecordStore, views *listview.Registry) *RecordsHandler {
	return &RecordsHandler{
		store: store,
		views: views,
	}
}

func (h *RecordsHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.POST("/inventory", h.CreateRecord)
		protectedRoutes.GET("/inventory", h.ListRecords)
		protectedRoutes.GET("/inventory/:imei", h.GetRecord)
		protectedRoutes.PATCH("/inventory/:imei", h.UpdateRecord)
		protectedRoutes.DELETE("/inventory/:imei", h.DeleteRecord)
		protectedRoutes.POST("/inventory/scan", h.ResolveScan)
	}
}

// recordResponse decorates a record with the status-dependent date
// label the list screen renders.
type recordResponse struct {
	models.InventoryRecord
	DateLabel string `json:"date_label"`
}

func newRecordResponse(record models.InventoryRecord) recordResponse {
	return recordResponse{
		InventoryRecord: record,
		DateLabel:       record.DateLabel(),
	}
}

func (h *RecordsHandler) CreateRecord(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	var draft models.RecordDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	controller, err := h.views.ForShop(shopPhone)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	record, err := ValidateDraft(draft, true, controller.HasImei)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	stored, err := h.store.CreateRecord(shopPhone, record)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	controller.Apply(*stored)
	c.JSON(http.StatusCreated, newRecordResponse(*stored))
}

func (h *RecordsHandler) ListRecords(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	controller, err := h.views.ForShop(shopPhone)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if err := controller.Refresh(); err != nil {
		respondStoreError(c, err)
		return
	}

	filter := listview.FilterAll
	if raw := c.Query("status"); raw != "" {
		filter, err = listview.NewFilter(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter", "details": err.Error()})
			return
		}
	}
	view := controller.View(filter, c.Query("search"))
	responses := make([]recordResponse, 0, len(view))
	for _, record := range view {
		responses = append(responses, newRecordResponse(record))
	}

	c.JSON(http.StatusOK, gin.H{
		"records": responses,
		"counts":  controller.Counts(),
	})
}

func (h *RecordsHandler) GetRecord(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	record, err := h.store.GetRecord(shopPhone, c.Param("imei"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, newRecordResponse(*record))
}

func (h *RecordsHandler) UpdateRecord(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}
	imei := c.Param("imei")

	var patch models.RecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	existing, err := h.store.GetRecord(shopPhone, imei)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	// Validate the merged result, then persist the full validated field
	// set so the stored row always satisfies the counterparty rule.
	merged, err := ValidateDraft(mergeDraft(*existing, patch), false, nil)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	status := merged.Status.String()
	fullPatch := models.RecordPatch{
		Model:               &merged.Model,
		Status:              &status,
		CounterpartyName:    &merged.CounterpartyName,
		CounterpartyContact: &merged.CounterpartyContact,
	}

	updated, err := h.store.UpdateRecord(shopPhone, imei, fullPatch)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if controller, err := h.views.ForShop(shopPhone); err == nil {
		controller.Apply(*updated)
	}
	c.JSON(http.StatusOK, newRecordResponse(*updated))
}

func (h *RecordsHandler) DeleteRecord(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}
	imei := c.Param("imei")

	if err := h.store.DeleteRecord(shopPhone, imei); err != nil {
		respondStoreError(c, err)
		return
	}

	if controller, err := h.views.ForShop(shopPhone); err == nil {
		controller.Remove(imei)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted"})
}

type scanRequest struct {
	Payload   string `json:"payload" binding:"required"`
	Symbology string `json:"symbology"`
}

// ResolveScan converts a decoded barcode payload into the form the
// client should open, resolved against the cached record set.
func (h *RecordsHandler) ResolveScan(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	controller, err := h.views.ForShop(shopPhone)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	candidate, err := scan.ParsePayload(req.Payload, req.Symbology)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, scan.Resolve(candidate, controller))
}

// mergeDraft overlays a patch onto an existing record, producing the
// draft that must pass validation before anything is written.
func mergeDraft(existing models.InventoryRecord, patch models.RecordPatch) models.RecordDraft {
	draft := models.RecordDraft{
		Imei:                existing.Imei,
		Model:               existing.Model,
		Status:              existing.Status.String(),
		CounterpartyName:    existing.CounterpartyName,
		CounterpartyContact: existing.CounterpartyContact,
	}
	if patch.Model != nil {
		draft.Model = *patch.Model
	}
	if patch.Status != nil {
		draft.Status = *patch.Status
	}
	if patch.CounterpartyName != nil {
		draft.CounterpartyName = *patch.CounterpartyName
	}
	if patch.CounterpartyContact != nil {
		draft.CounterpartyContact = *patch.CounterpartyContact
	}
	return draft
}

// respondStoreError maps the domain error taxonomy onto HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *custom_error.ValidationError:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"reason": e.Reason,
			"field":  e.Field,
		})
	case *custom_error.DuplicateKeyError:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "IMEI already registered", "imei": e.Imei})
	case *custom_error.NotFoundError:
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Record not found", "imei": e.Imei})
	case *custom_error.UnrecognizedPayloadError:
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Unrecognized scan payload"})
	case *custom_error.UnavailableError:
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Store unavailable", "details": e.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request failed", "details": err.Error()})
	}
}
