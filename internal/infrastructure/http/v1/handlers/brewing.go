package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/batch"
	"birrificio/internal/domain/brewing"
	"birrificio/internal/infrastructure/export"
)

// BrewingHandler serves batch, packaging and fermentation endpoints.
type BrewingHandler struct {
	*BaseHandler
	service *brewing.Service
}

// NewBrewingHandler creates a brewing handler.
func NewBrewingHandler(base *BaseHandler, service *brewing.Service) *BrewingHandler {
	return &BrewingHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the brewing endpoints on a year-scoped group.
func (h *BrewingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/batches", h.ListBatches)
	rg.POST("/batches", h.SaveBatch)
	rg.POST("/batches/:lot/close", h.CloseBatch)
	rg.POST("/batches/:lot/close-cost", h.CloseCostAnalysis)
	rg.GET("/batches/:lot/cost", h.BatchCost)
	rg.GET("/batches/:lot/cost/export", h.ExportBatchCost)
	rg.GET("/batches/:lot/readings", h.ListReadings)
	rg.POST("/batches/:lot/readings", h.SaveReading)
	rg.POST("/packagings", h.SavePackaging)
	rg.GET("/quotes/:id/cost", h.QuoteCost)
}

// SaveBatchRequest carries a batch header together with the ingredient
// draws recorded in the same save.
type SaveBatchRequest struct {
	Batch        batch.Batch                     `json:"batch"`
	Consumptions []brewing.IngredientConsumption `json:"consumptions"`
}

// SaveBatch creates or updates a batch and records its consumptions.
func (h *BrewingHandler) SaveBatch(c *gin.Context) {
	var req SaveBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.SaveBatch(c.Request.Context(), h.Year(c), req.Batch, req.Consumptions); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "batch saved")
}

// ListBatches returns the year's batch headers.
func (h *BrewingHandler) ListBatches(c *gin.Context) {
	batches, err := h.service.GetBatches(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, batches)
}

// CloseBatch releases the batch's fermenter.
func (h *BrewingHandler) CloseBatch(c *gin.Context) {
	if err := h.service.CloseBatch(c.Request.Context(), h.Year(c), c.Param("lot")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "batch closed")
}

// CloseCostAnalysis freezes the batch's cost inputs.
func (h *BrewingHandler) CloseCostAnalysis(c *gin.Context) {
	if err := h.service.CloseCostAnalysis(c.Request.Context(), h.Year(c), c.Param("lot")); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "cost analysis closed")
}

// BatchCost returns the batch's cost breakdown.
func (h *BrewingHandler) BatchCost(c *gin.Context) {
	breakdown, err := h.service.BatchCost(c.Request.Context(), h.Year(c), c.Param("lot"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, breakdown)
}

// ExportBatchCost downloads the cost breakdown as a spreadsheet.
func (h *BrewingHandler) ExportBatchCost(c *gin.Context) {
	breakdown, err := h.service.BatchCost(c.Request.Context(), h.Year(c), c.Param("lot"))
	if err != nil {
		h.Error(c, err)
		return
	}
	payload, err := export.BatchCost(*breakdown)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.File(c, "costi-"+breakdown.Lot+".xlsx", xlsxContentType, payload)
}

// ReadingRequest is one fermentation measurement.
type ReadingRequest struct {
	Date        time.Time `json:"date" binding:"required"`
	Temperature float64   `json:"temperature"`
	Gravity     float64   `json:"gravity"`
}

// SaveReading records a fermentation measurement for a lot.
func (h *BrewingHandler) SaveReading(c *gin.Context) {
	var req ReadingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	err := h.service.SaveReading(c.Request.Context(), h.Year(c), c.Param("lot"), req.Date, req.Temperature, req.Gravity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "reading saved")
}

// ListReadings returns a lot's fermentation readings.
func (h *BrewingHandler) ListReadings(c *gin.Context) {
	readings, err := h.service.GetReadings(c.Request.Context(), h.Year(c), c.Param("lot"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, readings)
}

// SavePackagingRequest carries a packaging event and the material lots it
// draws from.
type SavePackagingRequest struct {
	Event     batch.PackagingEvent       `json:"event"`
	Materials brewing.PackagingMaterials `json:"materials"`
}

// SavePackaging records a packaging run with its material consumptions.
func (h *BrewingHandler) SavePackaging(c *gin.Context) {
	var req SavePackagingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.service.SavePackaging(c.Request.Context(), h.Year(c), req.Event, req.Materials); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "packaging saved")
}

// QuoteCost prices a stored quote.
func (h *BrewingHandler) QuoteCost(c *gin.Context) {
	breakdown, err := h.service.QuoteCost(c.Request.Context(), h.Year(c), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, breakdown)
}
