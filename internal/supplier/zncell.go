package supplier

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/normalize"
	"pricelist/internal/pricing"
)

const ZNCellName = "ZN Cell"

const znColorEmoji = `⬜⬛🟦🟪🟩🟥🩷🥇🐪🩶💗🏳`

var (
	reZNEmoji      = regexp.MustCompile(`[` + znColorEmoji + `]`)
	reZNHeader     = regexp.MustCompile(`^([A-Z].*?)\s+(\d+(?:GB|MM))\b`)
	reZNColorPrice = regexp.MustCompile(`([` + znColorEmoji + `].*?)\s+R\$\s*([\d.,]+)`)
	reZNAccessory  = regexp.MustCompile(`^(🔌|🔋)(.*?)R\$\s*([\d.,]+)`)
	reZNAirPods    = regexp.MustCompile(`🎧(.*?)R\$\s*([\d.,]+)`)
)

type znSection int

const (
	znSealed znSection = iota + 1
	znSwap
	znAccessories
	znXiaomi
)

var znSections = []struct {
	marker  string
	section znSection
}{
	{"📱APPLE  LACRADO📱", znSealed},
	{"SWAP AMERICANOS", znSwap},
	{"ACESSÓRIOS APPLE", znAccessories},
	{"XIAOMI", znXiaomi},
}

// ZNCell reads lists where a model header is followed by one line per color,
// each carrying its own price:
//
//	IPHONE 15 PRO MAX 256GB
//	⬛🟦 R$ 7.300,00
type ZNCell struct {
	log logrus.FieldLogger
}

func NewZNCell(log logrus.FieldLogger) *ZNCell {
	return &ZNCell{log: log.WithField("processor", ZNCellName)}
}

func (p *ZNCell) Name() string { return ZNCellName }

func (p *ZNCell) CanProcess(text string) bool {
	if !reZNEmoji.MatchString(text) {
		return false
	}
	return strings.Contains(text, "📱APPLE  LACRADO📱") || strings.Contains(text, "SWAP AMERICANOS")
}

type znScan struct {
	state    scanState
	section  znSection
	product  string
	storage  string
	products []model.RawProduct
}

func (p *ZNCell) ExtractProducts(text, source string) []model.RawProduct {
	log := p.log.WithField("source", source)
	s := &znScan{state: awaitingSection}
	for i, line := range splitLines(text) {
		p.step(log, s, i, line)
	}
	log.Infof("%d produtos extraídos", len(s.products))
	return s.products
}

func (p *ZNCell) step(log logrus.FieldLogger, s *znScan, i int, line string) {
	for _, sec := range znSections {
		if strings.Contains(line, sec.marker) {
			s.section = sec.section
			s.state.enter(log, i, awaitingModel)
			s.product, s.storage = "", ""
			return
		}
	}
	if s.state == awaitingSection {
		return
	}

	hasPrice := strings.Contains(line, "R$")
	if m := reZNHeader.FindStringSubmatch(line); m != nil && !hasPrice {
		s.product = strings.TrimSpace(m[1])
		s.storage = m[2]
		s.state.enter(log, i, awaitingColorOrPrice)
		return
	}
	if !hasPrice {
		return
	}

	if m := reZNAccessory.FindStringSubmatch(line); m != nil && s.section == znAccessories {
		price, ok := linePrice(log, i, m[3])
		if !ok {
			return
		}
		desc := strings.TrimSpace(m[2])
		s.products = append(s.products, model.RawProduct{
			Code:        localCode("ACES", truncate(desc, 15)),
			Description: desc + " - Acessório",
			Price:       pricing.AccessoryPrice(price),
			Source:      ZNCellName,
			Details: &model.ProductDetails{
				Brand:     "Apple",
				Model:     desc,
				Condition: "Novo",
				Extra:     "Acessório",
			},
		})
		return
	}

	if m := reZNAirPods.FindStringSubmatch(line); m != nil {
		price, ok := linePrice(log, i, m[2])
		if !ok {
			return
		}
		desc := strings.TrimSpace(m[1])
		details, found := normalize.DetectFamily(desc, "FONES APPLE")
		if !found {
			details = model.ProductDetails{Brand: "Apple", Model: "AirPods", Condition: "Novo"}
		}
		p.applySection(s, &details)
		s.products = append(s.products, model.RawProduct{
			Code:        localCode("AIRPODS", truncate(desc, 10)),
			Description: desc,
			Price:       price,
			Source:      ZNCellName,
			Details:     &details,
		})
		return
	}

	m := reZNColorPrice.FindStringSubmatch(line)
	if m == nil || s.state != awaitingColorOrPrice {
		return
	}
	price, ok := linePrice(log, i, m[2])
	if !ok {
		return
	}
	color := normalize.NormalizeColor(m[1])
	details := model.ProductDetails{
		Brand:     "Apple",
		Model:     s.product,
		Storage:   s.storage,
		Color:     color,
		Condition: "Novo",
	}
	p.applySection(s, &details)
	s.products = append(s.products, model.RawProduct{
		Code:        localCode("ZN", s.product, s.storage, color),
		Description: describe(s.product, s.storage, color),
		Price:       price,
		Source:      ZNCellName,
		Details:     &details,
	})
	log.WithField("line", i).Debugf("produto extraído: %s %s %s R$ %.2f", s.product, s.storage, color, price)
}

func (p *ZNCell) applySection(s *znScan, d *model.ProductDetails) {
	switch s.section {
	case znSwap:
		d.Condition = "Seminovo Swap"
		d.Region = "USA"
	case znXiaomi:
		d.Brand = "Xiaomi"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
