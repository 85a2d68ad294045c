package supplier

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/normalize"
)

const MadeInStoreName = "Made In Store"

var (
	reMISLine       = regexp.MustCompile(`(?i)^(\d+-\d+)\s+(.*)\s+R\$\s*([\d.,]+)$`)
	reMISCategory   = regexp.MustCompile(`(?i)^(IPHONE|MACBOOKS|FONES APPLE|APPLE WATCHS|TABLETS APPLE)`)
	reMISEmptyPrice = regexp.MustCompile(`^R\$\s*-$`)
	reMISCelApple   = regexp.MustCompile(`(?im)^\d+-\d+\s+CEL\s+APPLE\s+IPHONE`)
)

// MadeInStore reads table exports with one complete record per line:
//
//	IPHONE
//	12345-1 CEL APPLE IPHONE 13 128GB A2633 HN BLUE R$ 3.500,00
type MadeInStore struct {
	log logrus.FieldLogger
}

func NewMadeInStore(log logrus.FieldLogger) *MadeInStore {
	return &MadeInStore{log: log.WithField("processor", MadeInStoreName)}
}

func (p *MadeInStore) Name() string { return MadeInStoreName }

func (p *MadeInStore) CanProcess(text string) bool {
	return strings.Contains(text, "MADE IN STORE") ||
		strings.Contains(text, "TABELA APPLE") ||
		reMISCelApple.MatchString(text) ||
		(strings.Contains(text, "IPHONE") && strings.Contains(text, "MACBOOK") && strings.Contains(text, "APPLE WATCHS"))
}

func (p *MadeInStore) ExtractProducts(text, source string) []model.RawProduct {
	log := p.log.WithField("source", source)
	var (
		category string
		products []model.RawProduct
	)
	for i, line := range splitLines(text) {
		if m := reMISCategory.FindStringSubmatch(line); m != nil {
			category = strings.ToUpper(m[1])
			continue
		}
		if reMISEmptyPrice.MatchString(line) {
			continue
		}
		m := reMISLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		price, ok := linePrice(log, i, m[3])
		if !ok {
			continue
		}
		products = append(products, p.product(m[1], strings.TrimSpace(m[2]), price, category))
	}
	log.Infof("%d produtos extraídos", len(products))
	return products
}

func (p *MadeInStore) product(code, description string, price float64, category string) model.RawProduct {
	details, _ := normalize.Decompose(description, category)
	summary := describe(details.Model, details.Storage, details.Color)
	if summary == "" {
		summary = description
	}
	return model.RawProduct{
		Code:        code,
		Description: summary,
		Price:       price,
		Source:      MadeInStoreName,
		Details:     &details,
	}
}
