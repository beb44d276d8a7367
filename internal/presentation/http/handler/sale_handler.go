package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/enum"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// SaleHandler handles sale-related HTTP requests
type SaleHandler struct {
	saleService *service.SaleService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Checkout handles turning the session cart into a sale
func (h *SaleHandler) Checkout(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	var req request.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}

	input := &service.CheckoutInput{
		CustomerID:    req.CustomerID,
		SaleType:      enum.SaleType(req.SaleType),
		PaymentMethod: req.PaymentMethod,
		ReceiptType:   req.ReceiptType,
	}

	sale, err := h.saleService.Checkout(c.Request.Context(), businessID, operatorID, cartSession(c, operatorID), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale completed successfully", sale)
}

// List handles listing sales
func (h *SaleHandler) List(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	var req request.SaleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    req.Page,
			PerPage: req.PerPage,
		},
		PaymentMethod: req.PaymentMethod,
	}

	if req.StartDate != "" {
		if startDate, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			params.StartDate = &startDate
		}
	}

	if req.EndDate != "" {
		if endDate, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			// inclusive of the whole end day
			endDate = endDate.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &endDate
		}
	}

	sales, pg, err := h.saleService.ListSales(c.Request.Context(), businessID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Sales retrieved successfully", pagination.NewPaginatedResult[entity.Sale](sales, pg))
}

// Summary handles the revenue summary over the last ?days= days
func (h *SaleHandler) Summary(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	// a missing or malformed value falls back to the service default
	days, _ := strconv.Atoi(c.Query("days"))

	summary, err := h.saleService.Summary(c.Request.Context(), businessID, days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sales summary retrieved successfully", summary)
}

// Get handles getting a sale by ID
func (h *SaleHandler) Get(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale retrieved successfully", sale)
}

// Cancel handles voiding a paid sale
func (h *SaleHandler) Cancel(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "sale")
	if !ok {
		return
	}

	sale, err := h.saleService.CancelSale(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Sale cancelled successfully", sale)
}
