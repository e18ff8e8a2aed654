package routers

import (
	"ppv-marketplace/internal/delivery/http/handlers"
	"ppv-marketplace/internal/delivery/http/middleware"
	"ppv-marketplace/internal/infrastructure/metrics"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/internal/usecases"
	consts "ppv-marketplace/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Services struct {
	Catalog      usecases.CatalogService
	Entitlement  usecases.EntitlementService
	Transactions usecases.TransactionService
	Uploads      usecases.UploadService
	Metrics      *metrics.Metrics
}

func SetupMarketplaceRoutes(app *fiber.App, cfg *config.Config, svc Services, log *zap.Logger) {
	videoHandler := handlers.NewVideoHandler(svc.Catalog, svc.Entitlement, cfg.Pinning.GatewayURL, log)
	txHandler := handlers.NewTransactionHandler(svc.Transactions, log)
	uploadHandler := handlers.NewUploadHandler(svc.Uploads, log)
	cacheHandler := handlers.NewCacheHandler(svc.Entitlement, log)

	optional := middleware.Session(cfg.Session.JWTSecret, cfg.Session.Issuer, false, log)
	required := middleware.Session(cfg.Session.JWTSecret, cfg.Session.Issuer, true, log)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": consts.StatusOK})
	})
	if svc.Metrics != nil {
		app.Get("/metrics", svc.Metrics.Handler())
	}

	api := app.Group("/api/v1")
	api.Get("/:backend/videos", videoHandler.ListVideos)
	api.Get("/:backend/videos/:id", videoHandler.GetVideo)
	api.Get("/:backend/videos/:id/access", optional, videoHandler.Access)

	api.Post("/:backend/videos", required, uploadHandler.RegisterVideo)
	api.Put("/:backend/videos/:id", required, txHandler.UpdateVideo)
	api.Post("/:backend/videos/:id/purchase", required, txHandler.Purchase)
	api.Post("/:backend/videos/:id/withdraw", required, txHandler.Withdraw)
	api.Post("/:backend/videos/:id/toggle", required, txHandler.ToggleActive)

	api.Get("/transactions/:id", optional, txHandler.Status)
	api.Post("/transactions/:id/submitted", required, txHandler.Submitted)

	api.Delete("/cache", required, cacheHandler.ResetCache)
}
