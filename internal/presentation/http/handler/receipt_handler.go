package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles printer-related HTTP requests.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// GetStatus returns the current printer connection status.
func (h *ReceiptHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.receiptService.GetStatus(c.Request.Context()))
}

// PrintSale prints the ticket of a sale.
func (h *ReceiptHandler) PrintSale(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "sale")
	if !ok {
		return
	}

	receipt, err := h.receiptService.PrintSaleReceipt(c.Request.Context(), businessID, id)
	if err != nil {
		// the ticket was built but the device failed
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{"receipt": receipt})
}

// PrintClosingSlip prints the end-of-shift report of a closed register.
func (h *ReceiptHandler) PrintClosingSlip(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}

	slip, err := h.receiptService.PrintClosingSlip(c.Request.Context(), businessID, id)
	if err != nil {
		if slip != nil {
			response.OK(c, "Closing slip generated but printing failed", gin.H{
				"slip":    slip,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Closing slip printed successfully", gin.H{"slip": slip})
}
