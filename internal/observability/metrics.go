package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelist_documents_total",
			Help: "Documentos processados por status",
		},
		[]string{"status"},
	)

	ProductsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelist_products_extracted_total",
			Help: "Produtos extraídos por processador",
		},
		[]string{"processor"},
	)

	FallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelist_fallbacks_total",
			Help: "Documentos que caíram nos extratores genéricos",
		},
		[]string{"kind"},
	)

	ProcessorPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelist_processor_panics_total",
			Help: "Falhas inesperadas recuperadas por processador",
		},
		[]string{"processor"},
	)

	InvalidPrices = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricelist_invalid_prices_total",
			Help: "Linhas ignoradas por preço inválido",
		},
	)

	DroppedRecords = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pricelist_dropped_records_total",
			Help: "Produtos descartados por detalhes malformados",
		},
	)

	PersistedProducts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricelist_persisted_products_total",
			Help: "Produtos gravados no banco por status",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register adds the collectors to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			DocumentsTotal,
			ProductsExtracted,
			FallbacksTotal,
			ProcessorPanics,
			InvalidPrices,
			DroppedRecords,
			PersistedProducts,
		)
	})
}

// Start serves /metrics on port in the background.
func Start(port string, log logrus.FieldLogger) {
	Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.WithError(err).Warn("servidor de métricas encerrado")
		}
	}()
}
