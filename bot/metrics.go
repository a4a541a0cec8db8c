package bot

import "github.com/prometheus/client_golang/prometheus"

var (
	messagesHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_handled_total",
			Help: "Total number of chat messages handled, by state at arrival",
		},
		[]string{"state"},
	)

	ordersCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_completed_total",
			Help: "Total number of orders that reached a receipt",
		},
		[]string{"payment_method"},
	)

	sessionResetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_session_resets_total",
			Help: "Total number of orders reset before completion",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(messagesHandledTotal)
	prometheus.MustRegister(ordersCompletedTotal)
	prometheus.MustRegister(sessionResetsTotal)
}

// NewActiveSessionsCollector melaporkan jumlah sesi aktif saat /metrics di-scrape.
// Sesi kedaluwarsa yang terbaca saat itu ikut dibuang, tanpa loop latar belakang.
func NewActiveSessionsCollector(store SessionStore) prometheus.Collector {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bot_active_sessions",
			Help: "Number of unexpired chat sessions",
		},
		func() float64 { return float64(store.ActiveSessions()) },
	)
}
