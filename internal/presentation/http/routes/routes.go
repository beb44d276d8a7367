package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pos-api/internal/config"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Catalog      *handler.CatalogHandler
	Cart         *handler.CartHandler
	Sale         *handler.SaleHandler
	CashRegister *handler.CashRegisterHandler
	Receipt      *handler.ReceiptHandler
	Health       gin.HandlerFunc
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireBusiness())

		rateLimiter := middleware.NewBusinessRateLimiter(middleware.RateLimiterConfigFrom(&deps.Cfg.RateLimit))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	protected.GET("/catalog/:id/price", h.Catalog.GetPrice)

	registerCartRoutes(protected, h)
	registerSaleRoutes(protected, h, idempotent)
	registerCashRegisterRoutes(protected, h, idempotent)

	protected.GET("/printer/status", h.Receipt.GetStatus)
}

func registerCartRoutes(protected *gin.RouterGroup, h *Handlers) {
	cart := protected.Group("/cart")
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:product_id", h.Cart.UpdateItem)
		cart.DELETE("/items/:product_id", h.Cart.RemoveItem)
		cart.PUT("/discount", h.Cart.SetDiscount)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	sales := protected.Group("/sales")
	{
		// a retried checkout must not record the sale twice
		sales.POST("/checkout", idempotent, h.Sale.Checkout)
		sales.GET("", h.Sale.List)
		sales.GET("/summary", h.Sale.Summary)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/cancel", h.Sale.Cancel)
		sales.POST("/:id/receipt", h.Receipt.PrintSale)
	}
}

func registerCashRegisterRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	registers := protected.Group("/cash-registers")
	{
		registers.POST("/open", idempotent, h.CashRegister.Open)
		registers.GET("/current", h.CashRegister.Current)
		registers.GET("", middleware.RequireRole("admin", "manager"), h.CashRegister.List)
		registers.GET("/:id", h.CashRegister.Get)
		registers.GET("/:id/summary", h.CashRegister.Summary)
		registers.GET("/:id/movements", h.CashRegister.ListMovements)
		registers.POST("/:id/movements", idempotent, h.CashRegister.AddMovement)
		registers.GET("/:id/conciliations", h.CashRegister.ListConciliations)
		registers.POST("/:id/conciliations", h.CashRegister.Conciliate)
		registers.POST("/:id/close", idempotent, h.CashRegister.Close)
		registers.POST("/:id/closing-slip", h.Receipt.PrintClosingSlip)
	}
}
