package supplier

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
)

const JCAtacadoName = "JC Atacado"

var (
	reJCModel  = regexp.MustCompile(`➖\s+(.+?)\s+(\d+\s*GB)`)
	reJCColors = regexp.MustCompile(`➡\s+(.+)`)
	reJCSplit  = regexp.MustCompile(`,\s*`)
	reJCIPhone = regexp.MustCompile(`(?i)iphone`)
)

// JCAtacado reads lists shaped as a model line, a price line and a colors line:
//
//	➖ 11 64GB
//	R$ 1.450,00
//	➡ Preto, Branco
type JCAtacado struct {
	log logrus.FieldLogger
}

func NewJCAtacado(log logrus.FieldLogger) *JCAtacado {
	return &JCAtacado{log: log.WithField("processor", JCAtacadoName)}
}

func (p *JCAtacado) Name() string { return JCAtacadoName }

func (p *JCAtacado) CanProcess(text string) bool {
	header := strings.Contains(text, "JC ATACADO LISTA") || strings.Contains(text, "LISTA DE SEMINOVOS")
	iphones := strings.Contains(text, "IPHONES") && strings.Contains(text, "GB")
	symbols := strings.Contains(text, "➖") || strings.Contains(text, "➡")
	return header && iphones && symbols
}

type jcScan struct {
	state    scanState
	model    string
	storage  string
	price    float64
	products []model.RawProduct
}

func (p *JCAtacado) ExtractProducts(text, source string) []model.RawProduct {
	log := p.log.WithField("source", source)
	s := &jcScan{state: awaitingSection}
	for i, line := range splitLines(text) {
		p.step(log, s, i, line)
	}
	log.Infof("%d produtos extraídos", len(s.products))
	return s.products
}

func (p *JCAtacado) step(log logrus.FieldLogger, s *jcScan, i int, line string) {
	if strings.Contains(line, "LISTA DE SEMINOVOS") || strings.Contains(line, "IPHONES") {
		s.state.enter(log, i, awaitingModel)
		return
	}
	if s.state == awaitingSection {
		return
	}
	if strings.Contains(line, "GARANTIA DE") || strings.Contains(line, "ATENÇÃO VALORES") {
		s.state.enter(log, i, awaitingSection)
		return
	}

	if m := reJCModel.FindStringSubmatch(line); m != nil {
		s.model = strings.TrimSpace(m[1])
		s.storage = strings.Join(strings.Fields(m[2]), "")
		s.price = 0
		s.state.enter(log, i, awaitingColorOrPrice)
		return
	}
	if s.state != awaitingColorOrPrice {
		return
	}

	if m := rePrice.FindStringSubmatch(line); m != nil {
		if price, ok := linePrice(log, i, m[1]); ok {
			s.price = price
		}
		return
	}

	m := reJCColors.FindStringSubmatch(line)
	if m == nil || s.price <= 0 {
		return
	}
	modelName := "iPhone " + strings.TrimSpace(reJCIPhone.ReplaceAllString(s.model, ""))
	for _, color := range reJCSplit.Split(strings.TrimSpace(m[1]), -1) {
		if color = strings.TrimSpace(color); color == "" {
			continue
		}
		details := &model.ProductDetails{
			Brand:     "Apple",
			Model:     modelName,
			Storage:   s.storage,
			Color:     color,
			Condition: "Seminovo",
		}
		s.products = append(s.products, model.RawProduct{
			Code:        localCode("JC", modelName, s.storage, color),
			Description: describe(modelName, s.storage, color, "- "+JCAtacadoName),
			Price:       s.price,
			Source:      JCAtacadoName,
			Details:     details,
		})
		log.WithField("line", i).Debugf("produto extraído: %s %s %s R$ %.2f", modelName, s.storage, color, s.price)
	}
	s.price = 0
}
