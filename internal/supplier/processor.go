package supplier

import (
	"regexp"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/observability"
	"pricelist/internal/pricing"
)

// ErrNoMatchingProcessor marks a document no vendor processor could read.
// It is informational: the registry logs it and moves on to the fallbacks.
var ErrNoMatchingProcessor = errors.New("no matching processor")

// Processor reads one vendor's price-list layout.
//
// CanProcess must be cheap and free of side effects other than logging.
// ExtractProducts keeps all scan state local to the call.
type Processor interface {
	Name() string
	CanProcess(text string) bool
	ExtractProducts(text, source string) []model.RawProduct
}

// scanState is the position of a line scanner inside a vendor document.
type scanState int

const (
	awaitingSection scanState = iota
	awaitingModel
	awaitingColorOrPrice
)

func (s scanState) String() string {
	switch s {
	case awaitingSection:
		return "awaiting-section"
	case awaitingModel:
		return "awaiting-model"
	case awaitingColorOrPrice:
		return "awaiting-color-or-price"
	}
	return "unknown"
}

// enter moves the scanner to next, logging the transition.
func (s *scanState) enter(log logrus.FieldLogger, line int, next scanState) {
	if *s != next {
		log.WithFields(logrus.Fields{
			"line": line,
			"from": s.String(),
			"to":   next.String(),
		}).Debug("mudança de estado")
	}
	*s = next
}

var (
	rePrice      = regexp.MustCompile(`R\$\s*([\d.,]+)`)
	reCodeSpaces = regexp.MustCompile(`\s+`)
)

// splitLines returns the trimmed, non-empty lines of text.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// linePrice parses a price token, logging and counting the line when it is
// not a valid price.
func linePrice(log logrus.FieldLogger, line int, raw string) (float64, bool) {
	price, err := pricing.ParsePrice(raw)
	if err != nil {
		observability.InvalidPrices.Inc()
		log.WithFields(logrus.Fields{"line": line, "raw": raw}).WithError(err).Debug("preço ignorado")
		return 0, false
	}
	return price, true
}

// localCode builds a vendor-local product code; the pipeline replaces it with
// the normalized key whenever details are present.
func localCode(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToUpper(reCodeSpaces.ReplaceAllString(strings.Join(kept, "-"), "-"))
}

func describe(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// extractSafely runs p.ExtractProducts and turns a panic into zero products.
func extractSafely(log logrus.FieldLogger, p Processor, text, source string) (products []model.RawProduct) {
	defer func() {
		if r := recover(); r != nil {
			observability.ProcessorPanics.WithLabelValues(p.Name()).Inc()
			log.WithFields(logrus.Fields{"processor": p.Name(), "source": source}).
				Errorf("falha ao processar documento: %v", r)
			products = nil
		}
	}()
	return p.ExtractProducts(text, source)
}
