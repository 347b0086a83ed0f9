package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/expiry"
	"birrificio/internal/domain/year"
	"birrificio/internal/infrastructure/backup"
	"birrificio/internal/infrastructure/http/v1/dto"
)

// YearsHandler serves the dataset lifecycle endpoints: year creation with
// carry-forward, expiry reconciliation, backup and factory reset.
type YearsHandler struct {
	*BaseHandler
	years      *year.Service
	reconciler *expiry.Reconciler
	backup     *backup.Service
}

// NewYearsHandler creates a years handler.
func NewYearsHandler(base *BaseHandler, years *year.Service, reconciler *expiry.Reconciler, backupSvc *backup.Service) *YearsHandler {
	return &YearsHandler{BaseHandler: base, years: years, reconciler: reconciler, backup: backupSvc}
}

// RegisterRoutes mounts the lifecycle endpoints. List/create/backup/reset
// are store-wide; reconcile is year-scoped.
func (h *YearsHandler) RegisterRoutes(root, yearScoped *gin.RouterGroup) {
	root.GET("/years", h.List)
	root.POST("/years", h.Create)
	root.GET("/backup", h.Export)
	root.POST("/backup", h.Import)
	root.POST("/factory-reset", h.Reset)

	yearScoped.POST("/reconcile", h.Reconcile)
	yearScoped.GET("/dataset", h.GetDataset)
}

// CreateYearRequest asks for a new fiscal year, optionally seeded from an
// existing one.
type CreateYearRequest struct {
	Year       string `json:"year" binding:"required"`
	ImportFrom string `json:"importFrom"`
}

// Create makes a new year; Created is false when it already exists.
func (h *YearsHandler) Create(c *gin.Context) {
	var req CreateYearRequest
	if !h.BindJSON(c, &req) {
		return
	}
	created, err := h.years.Create(c.Request.Context(), req.Year, req.ImportFrom)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CreatedYearResponse{Created: created, Year: req.Year})
}

// List returns the stored years.
func (h *YearsHandler) List(c *gin.Context) {
	years, err := h.years.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, years)
}

// GetDataset returns one year's full document.
func (h *YearsHandler) GetDataset(c *gin.Context) {
	d, err := h.years.Get(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Reconcile runs the expiry scan for the year, discharging expired lots
// and returning the warnings.
func (h *YearsHandler) Reconcile(c *gin.Context) {
	result, err := h.reconciler.Reconcile(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Export downloads the whole store as one bundle. ?compress=1 wraps the
// JSON in a zstd frame.
func (h *YearsHandler) Export(c *gin.Context) {
	if c.Query("compress") == "1" {
		payload, err := h.backup.ExportCompressed(c.Request.Context())
		if err != nil {
			h.Error(c, err)
			return
		}
		h.File(c, "birrificio-backup.json.zst", "application/zstd", payload)
		return
	}

	payload, err := h.backup.Export(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.File(c, "birrificio-backup.json", "application/json", payload)
}

// Import replaces the entire store with the uploaded bundle.
func (h *YearsHandler) Import(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, apperror.NewImportFormat("unreadable request body").WithCause(err))
		return
	}
	if err := h.backup.Import(c.Request.Context(), payload); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "backup imported")
}

// Reset wipes the entire store. The UI performs its double confirmation
// before calling this.
func (h *YearsHandler) Reset(c *gin.Context) {
	if err := h.years.Reset(c.Request.Context()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "store cleared")
}
