package main //worker

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"ppv-marketplace/internal/infrastructure/cache"
	"ppv-marketplace/internal/infrastructure/chain"
	"ppv-marketplace/internal/infrastructure/db"
	"ppv-marketplace/internal/infrastructure/metrics"
	"ppv-marketplace/internal/infrastructure/queue"
	infra_repo "ppv-marketplace/internal/infrastructure/repositories"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/internal/pkg/logger"
	"ppv-marketplace/internal/usecases"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// maxRequeues bounds how often a job interrupted by shutdown is handed back.
const maxRequeues = 3

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresDB(cfg.Database)
	if err != nil {
		zl.Fatal("database connection failed", zap.Error(err))
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	zl.Info("worker connecting", zap.String("redis", cfg.Redis.Addr()), zap.Int("workers", cfg.Poll.Workers))
	jobs := queue.NewRedisQueue(rdb)

	clients, err := chain.Connect(ctx, cfg, nil, zl)
	if err != nil {
		zl.Fatal("chain connection failed", zap.Error(err))
	}
	defer clients.Close()
	chains := usecases.Chains(clients.Backends)

	m := metrics.New()
	entitlement := usecases.NewEntitlementService(
		chains,
		infra_repo.NewEntitlementRepository(database),
		cache.NewRedisCache(rdb),
		m,
		zl.Named("entitlement"),
	)
	txRepo := infra_repo.NewTransactionRepository(database)
	txs := usecases.NewTransactionService(chains, txRepo, entitlement, nil, cfg.Tx, cfg.Poll, m, zl.Named("tx"))

	// jobs lost in a previous shutdown are still pending with a hash
	if _, err := usecases.NewCleanupService(txRepo, zl.Named("cleanup")).RequeueAwaiting(ctx, jobs); err != nil {
		zl.Warn("requeueing awaiting transactions", zap.Error(err))
	}

	go serveMetrics(fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort), m, zl)

	pool := queue.NewWorkerPool(ctx, cfg.Poll.Workers, confirmHandler(txs, jobs, zl), zl)

	// BRPOP loop feeding the pool
	for ctx.Err() == nil {
		job, err := jobs.NextConfirm(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			zl.Warn("reading confirm queue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if !pool.AddJob(*job) {
			requeue(jobs, *job, zl)
		}
	}

	zl.Info("worker stopping")
	pool.Shutdown()
}

func confirmHandler(txs usecases.TransactionService, jobs *queue.RedisQueue, log *zap.Logger) queue.Handler {
	return func(ctx context.Context, job queue.ConfirmJob) error {
		id, err := uuid.Parse(job.TransactionID)
		if err != nil {
			return err
		}
		result, err := txs.Confirm(ctx, id)
		if ctx.Err() != nil {
			requeue(jobs, job, log)
			return ctx.Err()
		}
		if result == nil {
			return err
		}

		done := queue.ConfirmedJob{
			TransactionID: job.TransactionID,
			Kind:          result.Tx.Kind,
			Backend:       result.Tx.Backend,
			VideoID:       result.Tx.VideoID,
			Status:        result.Tx.Status,
		}
		if result.Observed != nil {
			done.Observed = result.Observed.String()
		}
		if perr := jobs.PublishConfirmed(context.WithoutCancel(ctx), done); perr != nil {
			log.Warn("publishing confirmation", zap.String("tx", job.TransactionID), zap.Error(perr))
		}
		return err
	}
}

// requeue hands an interrupted job back so another worker resumes polling.
func requeue(jobs *queue.RedisQueue, job queue.ConfirmJob, log *zap.Logger) {
	if job.Attempt >= maxRequeues {
		log.Warn("dropping confirmation job", zap.String("tx", job.TransactionID), zap.Int("attempt", job.Attempt))
		return
	}
	job.Attempt++
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := jobs.EnqueueConfirm(ctx, job); err != nil {
		log.Error("requeueing confirmation job", zap.String("tx", job.TransactionID), zap.Error(err))
	}
}

func serveMetrics(addr string, m *metrics.Metrics, log *zap.Logger) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/metrics", m.Handler())
	if err := app.Listen(addr); err != nil {
		log.Warn("metrics endpoint stopped", zap.String("addr", addr), zap.Error(err))
	}
}
