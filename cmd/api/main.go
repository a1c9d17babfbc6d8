package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/internal/worker"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ledgerStore lo que cada driver entrega a los casos de uso.
type ledgerStore struct {
	txRunner   inventory.TxRunner
	items      repository.InventoryItemRepository
	movements  repository.StockMovementRepository
	transfers  repository.StockTransferRepository
	products   repository.ProductRefRepository
	warehouses repository.WarehouseRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Ledger.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store := openStore(ctx, cfg, log)
	defer store.close()

	// Publicación de eventos: kafka si hay brokers, si no solo log.
	var publisher inventory.EventPublisher = kafka.NewLogPublisher(log.Component("events"))
	if cfg.Kafka.Enabled() {
		kp := kafka.NewPublisher(
			kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic),
			kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.ReorderTopic),
			cfg.Kafka.MovementsTopic, cfg.Kafka.ReorderTopic,
			log.Component("events"),
		)
		defer kp.Close()
		publisher = kp
	}

	var gate inventory.SignalGate
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis no disponible, señales de reorden sin deduplicar")
		} else {
			defer rdb.Close()
			gate = infraredis.NewSignalGate(rdb, cfg.Redis.SignalTTL())
		}
	}

	retry := inventory.RetryPolicy{MaxAttempts: cfg.Ledger.MaxRetries, BaseDelay: cfg.Ledger.RetryBase()}
	notifier := inventory.NewNotifier(publisher, gate, log.Component("notifier"))

	recorderUC := inventory.NewRecordMovementUseCase(store.txRunner, notifier, retry, log.Component("recorder"))
	reservationUC := inventory.NewReservationUseCase(store.txRunner, notifier, retry, log.Component("reservation"))
	transferUC := inventory.NewTransferUseCase(store.txRunner, store.items, store.transfers, notifier, retry, log.Component("transfer"))
	provisionUC := inventory.NewProvisionUseCase(store.txRunner, store.items, notifier, retry, log.Component("provision"))
	bulkUC := inventory.NewBulkSyncUseCase(store.txRunner, store.items, store.products, store.warehouses, notifier, retry, cfg.Ledger.BulkSyncWorkers, log.Component("bulk_sync"))
	queryUC := inventory.NewQueryUseCase(store.txRunner, store.items, store.movements, store.transfers, log.Component("query"))

	var feedWorker *worker.FeedWorker
	if cfg.Kafka.Enabled() && cfg.Kafka.FeedTopic != "" {
		consumer := kafka.NewConsumer(kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.FeedTopic, cfg.Kafka.FeedGroup), log.Component("feed_consumer"))
		feedWorker = worker.NewFeedWorker(consumer, bulkUC, log)
		feedWorker.Start(ctx)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName: cfg.App.Name,
		Recorder:    recorderUC,
		Reservation: reservationUC,
		Transfer:    transferUC,
		Provision:   provisionUC,
		BulkSync:    bulkUC,
		Query:       queryUC,
		Catalog:     inventory.NewCatalogUseCase(store.products, store.warehouses, log.Component("catalog")),
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if feedWorker != nil {
		if err := feedWorker.Stop(); err != nil {
			log.Error().Err(err).Msg("detener feed worker")
		}
	}

	log.Info().Msg("aplicación detenida")
}

// openStore abre el Ledger Store según LEDGER_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) ledgerStore {
	if cfg.Ledger.Driver == "memory" {
		log.Warn().Msg("ledger en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return ledgerStore{
			txRunner:   s,
			items:      s.Items(),
			movements:  s.Movements(),
			transfers:  s.Transfers(),
			products:   s.Products(),
			warehouses: s.Warehouses(),
			close:      func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return ledgerStore{
		txRunner:   postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout()),
		items:      postgres.NewInventoryItemRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		transfers:  postgres.NewStockTransferRepository(pool),
		products:   postgres.NewProductRefRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		close:      pool.Close,
	}
}
