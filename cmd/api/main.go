package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/pos-api/internal/application/service"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/repository"
	"github.com/sangkips/pos-api/internal/infrastructure/cache"
	"github.com/sangkips/pos-api/internal/infrastructure/database"
	infraRepo "github.com/sangkips/pos-api/internal/infrastructure/repository"
	"github.com/sangkips/pos-api/internal/presentation/http/handler"
	"github.com/sangkips/pos-api/internal/presentation/http/routes"
	"github.com/sangkips/pos-api/pkg/printer"
	"github.com/sangkips/pos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		if cfg.App.Debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := cache.NewRedis(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize repositories
	catalogRepo := infraRepo.NewCatalogRepository(db)
	registerRepo := infraRepo.NewCashRegisterRepository(db)
	saleRepo := infraRepo.NewSaleRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)
	cartStore := cache.NewCartStore(rdb, cfg.Cart.TTL)

	// Initialize services
	catalogService := service.NewCatalogService(catalogRepo)
	cartService := service.NewCartService(cartStore, catalogRepo)
	saleService := service.NewSaleService(saleRepo, cartService)
	registerService := service.NewCashRegisterService(registerRepo)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, tickets will not be printed")
		thermalPrinter = printer.NewNullPrinter()
	}
	receiptService := service.NewReceiptService(thermalPrinter, saleService, registerService, catalogRepo, service.ReceiptConfig{
		PrinterType: cfg.Printer.Type,
		StoreName:   cfg.Printer.StoreName,
		Address:     cfg.Printer.StoreAddress,
		TaxID:       cfg.Printer.StoreTaxID,
		Width:       cfg.Printer.Width,
	})

	handlers := &routes.Handlers{
		Catalog:      handler.NewCatalogHandler(catalogService),
		Cart:         handler.NewCartHandler(cartService),
		Sale:         handler.NewSaleHandler(saleService),
		CashRegister: handler.NewCashRegisterHandler(registerService),
		Receipt:      handler.NewReceiptHandler(receiptService),
		Health:       handler.Health(cfg.App.Name, handler.DBPinger(db), handler.RedisPinger(rdb)),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, idempotencyRepo, time.Hour)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", port).Str("env", cfg.App.Env).Msgf("starting %s", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server stopped")
}

// purgeIdempotencyKeys deletes expired keys until ctx is cancelled
func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to purge expired idempotency keys")
			}
		}
	}
}
