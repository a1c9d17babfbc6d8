// feed_import lee un CSV de inventario de proveedor y lo aplica como sincronización masiva,
// o lo publica en el tópico de feeds para que lo procese el worker del servicio.
//
// Uso: go run ./cmd/feed_import --file inventario.csv [--latin1] [--publish] [--reason "conteo mensual"]
//
// Columnas (con encabezado): sku, warehouse_code, quantity_on_hand, average_cost.
// Las celdas vacías no se tocan.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"
)

func main() {
	var (
		file        = pflag.String("file", "", "ruta del CSV")
		latin1      = pflag.Bool("latin1", false, "el archivo viene en ISO-8859-1")
		comma       = pflag.String("comma", ",", "separador de columnas")
		reason      = pflag.String("reason", "feed de proveedor", "razón de los ajustes")
		performedBy = pflag.String("performed-by", "feed_import", "autor de los movimientos")
		publish     = pflag.Bool("publish", false, "publicar en kafka en vez de aplicar directo")
	)
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *file == "" || len([]rune(*comma)) != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir CSV")
	}
	defer f.Close()

	entries, err := parseFeed(f, []rune(*comma)[0], *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	log.Info().Int("entries", len(entries)).Str("file", *file).Msg("feed leído")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	feed := kafka.FeedMessage{
		FeedID:      uuid.New().String(),
		Reason:      *reason,
		PerformedBy: *performedBy,
		Entries:     entries,
	}
	if *publish {
		if err := publishFeed(ctx, cfg.Kafka, feed); err != nil {
			log.Fatal().Err(err).Msg("publicar feed")
		}
		log.Info().Str("feed_id", feed.FeedID).Str("topic", cfg.Kafka.FeedTopic).Msg("feed publicado")
		return
	}

	report, err := applyFeed(ctx, cfg, log, feed)
	if err != nil {
		log.Fatal().Err(err).Msg("aplicar feed")
	}
	for _, e := range report.Entries {
		if e.Status == inventory.SyncFailed {
			log.Warn().Int("line", e.Index+2).Str("sku", e.SKU).Str("warehouse", e.WarehouseCode).Str("error", e.Error).Msg("entrada rechazada")
		}
	}
	fmt.Printf("total=%d aplicadas=%d sin_cambio=%d fallidas=%d\n", report.Total, report.Applied, report.Unchanged, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

func publishFeed(ctx context.Context, cfg config.KafkaConfig, feed kafka.FeedMessage) error {
	if !cfg.Enabled() {
		return fmt.Errorf("KAFKA_BROKERS no configurado")
	}
	value, err := json.Marshal(feed)
	if err != nil {
		return err
	}
	w := kafka.NewWriter(cfg.Brokers, cfg.FeedTopic)
	defer w.Close()
	return w.WriteMessages(ctx, kafkago.Message{Key: []byte(feed.FeedID), Value: value})
}

func applyFeed(ctx context.Context, cfg *config.Config, log *logger.Logger, feed kafka.FeedMessage) (*inventory.BulkSyncReport, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	retry := inventory.RetryPolicy{MaxAttempts: cfg.Ledger.MaxRetries, BaseDelay: cfg.Ledger.RetryBase()}
	bulk := inventory.NewBulkSyncUseCase(
		postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout()),
		postgres.NewInventoryItemRepository(pool),
		postgres.NewProductRefRepository(pool),
		postgres.NewWarehouseRepository(pool),
		inventory.NewNotifier(kafka.NewLogPublisher(log), nil, log),
		retry,
		cfg.Ledger.BulkSyncWorkers,
		log.Component("bulk_sync"),
	)

	entries := make([]inventory.BulkSyncEntry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		entries = append(entries, inventory.BulkSyncEntry{
			SKU:            e.SKU,
			WarehouseCode:  e.WarehouseCode,
			QuantityOnHand: e.QuantityOnHand,
			AverageCost:    e.AverageCost,
		})
	}
	return bulk.ApplyBulkUpdate(ctx, entries, feed.Reason, feed.PerformedBy)
}
