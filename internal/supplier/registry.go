package supplier

import (
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/observability"
)

// Extraction is the outcome of dispatching one document.
type Extraction struct {
	Processor string
	Products  []model.RawProduct
}

// Registry tries vendor processors in order and falls back to the generic
// extractors when none of them yields products.
type Registry struct {
	processors []Processor
	log        logrus.FieldLogger
}

// NewRegistry keeps processors in the given order. More specific detectors
// must come first.
func NewRegistry(log logrus.FieldLogger, processors ...Processor) *Registry {
	return &Registry{processors: processors, log: log}
}

// DefaultRegistry registers the known vendors.
func DefaultRegistry(log logrus.FieldLogger) *Registry {
	return NewRegistry(log,
		NewJCAtacado(log),
		NewZNCell(log),
		NewMadeInStore(log),
		NewReiDasCaixas(log),
	)
}

func (r *Registry) Processors() []Processor {
	return r.processors
}

// SelectAndExtract returns the products of the first processor that yields
// any, or of the generic fallbacks. The result may be empty.
func (r *Registry) SelectAndExtract(text, filename string) []model.RawProduct {
	return r.Extract(text, filename).Products
}

func (r *Registry) Extract(text, filename string) Extraction {
	log := r.log.WithField("source", filename)
	if strings.TrimSpace(text) == "" {
		log.Warn("documento vazio")
		return Extraction{}
	}

	for _, p := range r.processors {
		if !p.CanProcess(text) {
			continue
		}
		log.WithField("processor", p.Name()).Info("processador selecionado")
		products := extractSafely(log, p, text, filename)
		if len(products) > 0 {
			observability.ProductsExtracted.WithLabelValues(p.Name()).Add(float64(len(products)))
			return Extraction{Processor: p.Name(), Products: products}
		}
		log.WithField("processor", p.Name()).Warn("processador reconheceu o formato mas não extraiu produtos")
	}

	log.WithError(ErrNoMatchingProcessor).Info("usando extratores genéricos")

	if products := extractGeneric(log, text, filename); len(products) > 0 {
		observability.FallbacksTotal.WithLabelValues(GenericName).Inc()
		observability.ProductsExtracted.WithLabelValues(GenericName).Add(float64(len(products)))
		return Extraction{Processor: GenericName, Products: products}
	}

	if looksDelimited(text) {
		if products := sniffCSV(log, text, filename); len(products) > 0 {
			observability.FallbacksTotal.WithLabelValues(CSVName).Inc()
			observability.ProductsExtracted.WithLabelValues(CSVName).Add(float64(len(products)))
			return Extraction{Processor: CSVName, Products: products}
		}
	}

	observability.FallbacksTotal.WithLabelValues("none").Inc()
	log.Warn("nenhum produto encontrado")
	return Extraction{}
}
