package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles catalog price lookups
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GetPrice handles getting the current unit price of a product
func (h *CatalogHandler) GetPrice(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "id", "product")
	if !ok {
		return
	}

	price, err := h.catalogService.GetUnitPrice(c.Request.Context(), businessID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Price retrieved successfully", &response.CatalogPriceResponse{
		ProductID: productID.String(),
		UnitPrice: price,
	})
}
