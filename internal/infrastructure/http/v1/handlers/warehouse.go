package handlers

import (
	"github.com/gin-gonic/gin"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/movement"
	"birrificio/internal/domain/pricing"
	"birrificio/internal/domain/warehouse"
	"birrificio/internal/infrastructure/export"
)

// WarehouseHandler serves the raw-material ledger endpoints.
type WarehouseHandler struct {
	*BaseHandler
	service *warehouse.Service
}

// NewWarehouseHandler creates a warehouse handler.
func NewWarehouseHandler(base *BaseHandler, service *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the warehouse endpoints on a year-scoped group.
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/movements", h.ListMovements)
	rg.POST("/movements", h.AddMovements)
	rg.PUT("/movements/:index", h.UpdateMovement)
	rg.DELETE("/movements/:index", h.DeleteMovement)
	rg.DELETE("/operations/:reference", h.DeleteOperation)

	rg.GET("/stock", h.GetStock)
	rg.GET("/stock/export", h.ExportStock)
	rg.GET("/lots", h.GetLots)
	rg.DELETE("/products", h.DeleteProduct)

	rg.GET("/prices", h.GetPrices)
	rg.PUT("/prices", h.SetPrice)
}

// ListMovements returns the year's movement log.
func (h *WarehouseHandler) ListMovements(c *gin.Context) {
	movements, err := h.service.GetMovements(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movements)
}

// AddMovements appends movements to the year's log.
func (h *WarehouseHandler) AddMovements(c *gin.Context) {
	var movements []movement.Movement
	if !h.BindJSON(c, &movements) {
		return
	}
	if err := h.service.AddMovements(c.Request.Context(), h.Year(c), movements); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "movements recorded")
}

// UpdateMovement replaces one movement by log position.
func (h *WarehouseHandler) UpdateMovement(c *gin.Context) {
	index, ok := h.movementIndex(c)
	if !ok {
		return
	}
	var m movement.Movement
	if !h.BindJSON(c, &m) {
		return
	}
	if err := h.service.UpdateMovement(c.Request.Context(), h.Year(c), index, m); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "movement updated")
}

// DeleteMovement removes one movement by log position.
func (h *WarehouseHandler) DeleteMovement(c *gin.Context) {
	index, ok := h.movementIndex(c)
	if !ok {
		return
	}
	if err := h.service.DeleteMovement(c.Request.Context(), h.Year(c), index); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteOperation removes every movement sharing an operation reference.
func (h *WarehouseHandler) DeleteOperation(c *gin.Context) {
	if err := h.service.DeleteByOperation(c.Request.Context(), h.Year(c), c.Param("reference")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// GetStock returns the derived product-level stock table.
func (h *WarehouseHandler) GetStock(c *gin.Context) {
	entries, err := h.service.GetStock(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}

// ExportStock downloads the stock table as a spreadsheet.
func (h *WarehouseHandler) ExportStock(c *gin.Context) {
	entries, err := h.service.GetStock(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	payload, err := export.WarehouseStock(entries)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.File(c, "magazzino-"+h.Year(c)+".xlsx", xlsxContentType, payload)
}

// GetLots returns the available supplier lots.
func (h *WarehouseHandler) GetLots(c *gin.Context) {
	lots, err := h.service.GetLots(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, lots)
}

// DeleteProduct removes a whole product line; refused while stock remains.
func (h *WarehouseHandler) DeleteProduct(c *gin.Context) {
	var key warehouse.ProductKey
	if !h.BindJSON(c, &key) {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), h.Year(c), key); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// GetPrices returns the price catalog.
func (h *WarehouseHandler) GetPrices(c *gin.Context) {
	catalog, err := h.service.GetPriceCatalog(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, catalog)
}

// SetPrice records a manual price edit.
func (h *WarehouseHandler) SetPrice(c *gin.Context) {
	var entry pricing.Entry
	if !h.BindJSON(c, &entry) {
		return
	}
	if err := h.service.SetPrice(c.Request.Context(), h.Year(c), entry); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "price updated")
}

func (h *WarehouseHandler) movementIndex(c *gin.Context) (int, bool) {
	index, err := parseIndex(c.Param("index"))
	if err != nil {
		h.Error(c, apperror.NewValidation("movement index must be a number").WithDetail("index", c.Param("index")))
		return 0, false
	}
	return index, true
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
