package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MovementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_recorded_total",
		Help: "Movimientos escritos en el ledger por tipo",
	}, []string{"type"})

	MovementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_rejected_total",
		Help: "Movimientos rechazados por motivo",
	}, []string{"reason"})

	ReservationOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reservation_operations_total",
		Help: "Operaciones de reserva/compromiso por resultado",
	}, []string{"op", "result"})

	ConflictRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_conflict_retries_total",
		Help: "Reintentos por conflicto de concurrencia (deadlock, serialización, lock timeout)",
	}, []string{"op"})

	TransferLines = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_transfer_lines_total",
		Help: "Líneas de traslado por estado final",
	}, []string{"status"})

	BulkSyncEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_bulk_sync_entries_total",
		Help: "Entradas de sincronización masiva por estado",
	}, []string{"status"})

	ReorderSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_reorder_signals_total",
		Help: "Señales de reorden emitidas",
	}, []string{"kind"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_events_published_total",
		Help: "Eventos publicados en kafka por tópico y resultado",
	}, []string{"topic", "result"})

	FeedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_feed_messages_total",
		Help: "Mensajes del feed de proveedor procesados",
	}, []string{"result"})

	LedgerTxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_ledger_tx_duration_seconds",
		Help:    "Latencia de las transacciones del ledger, reintentos incluidos",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
