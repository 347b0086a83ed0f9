package handlers

import (
	"github.com/gin-gonic/gin"

	"birrificio/internal/core/apperror"
	"birrificio/internal/domain/beerstock"
	"birrificio/internal/domain/sales"
	"birrificio/internal/infrastructure/export"
)

// BeerStockHandler serves the finished-beer ledger endpoints.
type BeerStockHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewBeerStockHandler creates a beer stock handler.
func NewBeerStockHandler(base *BaseHandler, service *sales.Service) *BeerStockHandler {
	return &BeerStockHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the finished-beer endpoints on a year-scoped group.
func (h *BeerStockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/beer-stock", h.GetStock)
	rg.GET("/beer-stock/export", h.ExportStock)
	rg.PUT("/beer-stock/initial", h.SetInitialStock)
	rg.GET("/orders", h.ListOrders)
	rg.POST("/orders", h.SaveOrder)
	rg.GET("/inventory-checks", h.ListChecks)
	rg.POST("/inventory-checks", h.ReconcileCount)
}

// GetStock returns the finished-beer stock table, optionally filtered to
// one client via the ?client= query.
func (h *BeerStockHandler) GetStock(c *gin.Context) {
	items, err := h.service.GetStock(c.Request.Context(), h.Year(c), c.Query("client"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}

// ExportStock downloads the beer stock table as a spreadsheet.
func (h *BeerStockHandler) ExportStock(c *gin.Context) {
	items, err := h.service.GetStock(c.Request.Context(), h.Year(c), c.Query("client"))
	if err != nil {
		h.Error(c, err)
		return
	}
	payload, err := export.BeerStock(items)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}
	h.File(c, "birra-"+h.Year(c)+".xlsx", xlsxContentType, payload)
}

// SetInitialStock replaces the opening finished-beer snapshot.
func (h *BeerStockHandler) SetInitialStock(c *gin.Context) {
	var items []beerstock.InitialStock
	if !h.BindJSON(c, &items) {
		return
	}
	if err := h.service.SetInitialStock(c.Request.Context(), h.Year(c), items); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "initial stock updated")
}

// SaveOrder records a sales order.
func (h *BeerStockHandler) SaveOrder(c *gin.Context) {
	var order beerstock.SalesOrder
	if !h.BindJSON(c, &order) {
		return
	}
	id, err := h.service.SaveOrder(c.Request.Context(), h.Year(c), order)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, id)
}

// ListOrders returns the year's sales orders.
func (h *BeerStockHandler) ListOrders(c *gin.Context) {
	orders, err := h.service.GetOrders(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, orders)
}

// ReconcileCount runs the monthly physical inventory check.
func (h *BeerStockHandler) ReconcileCount(c *gin.Context) {
	var counts []sales.PhysicalCount
	if !h.BindJSON(c, &counts) {
		return
	}
	check, err := h.service.ReconcileCount(c.Request.Context(), h.Year(c), counts)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, check)
}

// ListChecks returns the year's inventory check records.
func (h *BeerStockHandler) ListChecks(c *gin.Context) {
	checks, err := h.service.GetChecks(c.Request.Context(), h.Year(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, checks)
}
