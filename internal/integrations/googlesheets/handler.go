package googlesheets

import (
	"net/http"
	"os"

	"github.com/DavisKoreal/Emay/pkg/security"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	service *ExportService
}

func NewExportHandler(service *ExportService) *ExportHandler {
	return &ExportHandler{
		service: service,
	}
}

func (h *ExportHandler) RegisterRoutes(router *gin.Engine) {
	protectedRoutes := router.Group("/integrations")
	protectedRoutes.Use(security.JWTMiddleware())
	{
		protectedRoutes.POST("/sheets/export", h.ExportInventory)
	}
}

type exportRequest struct {
	SpreadsheetID string `json:"spreadsheet_id"`
	Status        string `json:"status"`
}

// ExportInventory writes the shop's (optionally filtered) inventory to
// the configured spreadsheet. Failures surface to the caller; nothing
// is retried.
func (h *ExportHandler) ExportInventory(c *gin.Context) {
	shopPhone, err := security.GetShopPhoneFromContext(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing shop scope"})
		return
	}

	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	spreadsheetID := req.SpreadsheetID
	if spreadsheetID == "" {
		spreadsheetID = os.Getenv("SHEETS_SPREADSHEET_ID")
	}
	if spreadsheetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No spreadsheet configured"})
		return
	}

	exported, err := h.service.ExportInventory(shopPhone, spreadsheetID, req.Status)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Export failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Inventory exported",
		"exported": exported,
	})
}
