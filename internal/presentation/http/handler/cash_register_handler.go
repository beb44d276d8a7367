package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/domain/entity"
	"github.com/sangkips/pos-api/internal/domain/register"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/pkg/pagination"
)

// CashRegisterHandler handles cash register HTTP requests
type CashRegisterHandler struct {
	registerService *service.CashRegisterService
}

// NewCashRegisterHandler creates a new cash register handler
func NewCashRegisterHandler(registerService *service.CashRegisterService) *CashRegisterHandler {
	return &CashRegisterHandler{registerService: registerService}
}

// Open handles opening a register for the business
func (h *CashRegisterHandler) Open(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	var req request.OpenRegisterRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, "opening_balance", req.OpeningBalance) {
		return
	}

	reg, err := h.registerService.Open(c.Request.Context(), businessID, operatorID, *req.OpeningBalance)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash register opened successfully", &response.CashRegisterResponse{
		CashRegister:    reg,
		ExpectedBalance: reg.OpeningBalance,
	})
}

// Current handles getting the business's open register
func (h *CashRegisterHandler) Current(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	reg, err := h.registerService.GetOpenRegister(c.Request.Context(), businessID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondWithBalance(c, businessID, reg, "Cash register retrieved successfully")
}

// List handles listing register history
func (h *CashRegisterHandler) List(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	registers, pg, err := h.registerService.History(c.Request.Context(), businessID, &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Cash registers retrieved successfully", pagination.NewPaginatedResult[entity.CashRegister](registers, pg))
}

// Get handles getting a register by ID
func (h *CashRegisterHandler) Get(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}

	reg, err := h.registerService.GetRegister(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondWithBalance(c, businessID, reg, "Cash register retrieved successfully")
}

// Summary handles the income and expense breakdown of a register
func (h *CashRegisterHandler) Summary(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}

	summary, err := h.registerService.Summary(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash register summary retrieved successfully", summary)
}

// ListMovements handles listing a register's movements, newest first
func (h *CashRegisterHandler) ListMovements(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}

	movements, err := h.registerService.ListMovements(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Movements retrieved successfully", movements)
}

// AddMovement handles recording an income or expense
func (h *CashRegisterHandler) AddMovement(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}
	var req request.AddMovementRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, "amount", req.Amount) {
		return
	}

	movement, err := h.registerService.AddMovement(c.Request.Context(), businessID, id, operatorID, register.MovementInput{
		Type:      req.Type,
		Concept:   req.Concept,
		Amount:    *req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Movement recorded successfully", movement)
}

// ListConciliations handles listing a register's conciliations
func (h *CashRegisterHandler) ListConciliations(c *gin.Context) {
	businessID, _, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}

	conciliations, err := h.registerService.ListConciliations(c.Request.Context(), businessID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Conciliations retrieved successfully", conciliations)
}

// Conciliate handles comparing a physical count with the system balance
func (h *CashRegisterHandler) Conciliate(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}
	var req request.ConciliateRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, "physical_balance", req.PhysicalBalance) {
		return
	}

	conciliation, err := h.registerService.Conciliate(c.Request.Context(), businessID, id, operatorID, *req.PhysicalBalance, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Conciliation recorded successfully", conciliation)
}

// Close handles closing a register with the counted cash
func (h *CashRegisterHandler) Close(c *gin.Context) {
	businessID, operatorID, ok := identity(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id", "cash register")
	if !ok {
		return
	}
	var req request.CloseRegisterRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, "closing_balance", req.ClosingBalance) {
		return
	}

	reg, err := h.registerService.Close(c.Request.Context(), businessID, id, operatorID, *req.ClosingBalance)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash register closed successfully", &response.CashRegisterResponse{
		CashRegister:    reg,
		ExpectedBalance: *reg.ExpectedAtClose,
	})
}

func (h *CashRegisterHandler) respondWithBalance(c *gin.Context, businessID uuid.UUID, reg *entity.CashRegister, message string) {
	expected, err := h.registerService.ExpectedBalance(c.Request.Context(), businessID, reg.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, &response.CashRegisterResponse{
		CashRegister:    reg,
		ExpectedBalance: expected,
	})
}
