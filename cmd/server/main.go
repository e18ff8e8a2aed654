package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "ppv-marketplace/docs"

	"ppv-marketplace/internal/delivery/http/routers"
	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/infrastructure/cache"
	"ppv-marketplace/internal/infrastructure/chain"
	"ppv-marketplace/internal/infrastructure/db"
	"ppv-marketplace/internal/infrastructure/metrics"
	"ppv-marketplace/internal/infrastructure/queue"
	infra_repo "ppv-marketplace/internal/infrastructure/repositories"
	"ppv-marketplace/internal/infrastructure/storage"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/internal/pkg/logger"
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/errors/i18n"

	_ "ppv-marketplace/migrations"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/swagger"
)

const expirySchedule = "0 */1 * * * *"

// @title        PPV Marketplace API
// @version      1.0
// @BasePath     /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in           header
// @name         Authorization
func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := i18n.Load(cfg.Locale); err != nil {
		zl.Fatal("loading messages", zap.Error(err))
	}

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	if cfg.Database.AutoMigration {
		if err := db.RunMigrations(database); err != nil {
			zl.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	jobs := queue.NewRedisQueue(rdb)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	clients, err := chain.Connect(ctx, cfg, nil, zl)
	if err != nil {
		zl.Fatal("chain connection failed", zap.Error(err))
	}
	defer clients.Close()
	chains := usecases.Chains(clients.Backends)

	pinner, err := storage.NewS3Pinner(ctx, cfg.Pinning)
	if err != nil {
		zl.Fatal("pinning gateway", zap.Error(err))
	}

	m := metrics.New()
	entitlement := usecases.NewEntitlementService(
		chains,
		infra_repo.NewEntitlementRepository(database),
		cache.NewRedisCache(rdb),
		m,
		zl.Named("entitlement"),
	)
	txRepo := infra_repo.NewTransactionRepository(database)
	txService := usecases.NewTransactionService(chains, txRepo, entitlement, jobs, cfg.Tx, cfg.Poll, m, zl.Named("tx"))
	catalog := usecases.NewCatalogService(chains, infra_repo.NewVideoRepository(database), zl.Named("catalog"))
	uploads := usecases.NewUploadService(pinner, txService, *cfg, zl.Named("upload"))

	scheduler, err := usecases.StartExpiryCron(usecases.NewCleanupService(txRepo, zl.Named("cleanup")), expirySchedule, zl)
	if err != nil {
		zl.Fatal("expiry schedule", zap.Error(err))
	}
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Tx.MaxFileSize) + 10*1024*1024,
	})

	// Middleware
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	routers.SetupMarketplaceRoutes(app, cfg, routers.Services{
		Catalog:      catalog,
		Entitlement:  entitlement,
		Transactions: txService,
		Uploads:      uploads,
		Metrics:      m,
	}, zl)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr), zap.Strings("backends", backendNames(chains)))

	go startConfirmedQueueListener(ctx, jobs, catalog, zl)

	// Graceful shutdown
	go func() {
		if err := app.Listen(addr); err != nil {
			zl.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")
	stop()

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		zl.Error("server did not shut down cleanly", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}

// startConfirmedQueueListener refreshes the catalog mirror for every
// transaction a worker finished.
func startConfirmedQueueListener(ctx context.Context, jobs *queue.RedisQueue, catalog usecases.CatalogService, log *zap.Logger) {
	for ctx.Err() == nil {
		done, err := jobs.NextConfirmed(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("reading confirmed queue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if done == nil {
			continue
		}

		log.Info("transaction finished",
			zap.String("tx", done.TransactionID),
			zap.String("kind", done.Kind),
			zap.String("status", done.Status),
			zap.String("observed", done.Observed))
		backend := entities.Backend(done.Backend)
		if entities.Kind(done.Kind) == entities.KindRegisterVideo {
			// the new id is only known to the chain; relist the backend
			if _, _, err := catalog.List(ctx, backend); err != nil {
				log.Warn("relisting catalog", zap.String("tx", done.TransactionID), zap.Error(err))
			}
			continue
		}
		if err := catalog.Refresh(ctx, backend, done.VideoID); err != nil {
			log.Warn("refreshing catalog mirror", zap.String("tx", done.TransactionID), zap.Error(err))
		}
	}
}

func backendNames(chains usecases.Chains) []string {
	out := make([]string, 0, len(chains))
	for _, b := range chains.Backends() {
		out = append(out, string(b))
	}
	return out
}
