package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"birrificio/internal/domain/catalog"
	"birrificio/internal/domain/costing"
)

// CatalogHandler serves the master-data collection endpoints.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service}
}

// RegisterRoutes mounts the catalog endpoints on a year-scoped group.
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/catalog/:collection", h.Upsert)
	rg.DELETE("/catalog/:collection/:key", h.Delete)
	rg.PUT("/coefficients", h.SetCoefficients)
}

// Upsert inserts or replaces one record in the named collection.
func (h *CatalogHandler) Upsert(c *gin.Context) {
	var payload json.RawMessage
	if !h.BindJSON(c, &payload) {
		return
	}
	if err := h.service.Upsert(c.Request.Context(), h.Year(c), c.Param("collection"), payload); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "record saved")
}

// Delete removes one record from the named collection by key.
func (h *CatalogHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), h.Year(c), c.Param("collection"), c.Param("key")); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SetCoefficients replaces the year's cost coefficients.
func (h *CatalogHandler) SetCoefficients(c *gin.Context) {
	var coeff costing.Coefficients
	if !h.BindJSON(c, &coeff) {
		return
	}
	if err := h.service.SetCoefficients(c.Request.Context(), h.Year(c), coeff); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "coefficients updated")
}
