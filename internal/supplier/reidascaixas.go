package supplier

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/normalize"
)

const ReiDasCaixasName = "Rei das Caixas"

const reiNoColor = "N/A"

var (
	reReiProductPattern = regexp.MustCompile(`iPhone\s+\d+\s+(?:PRO|Pro|pro)?(?:\s+(?:MAX|Max|max))?\s+\d+GB`)
	reReiForcedStart    = regexp.MustCompile(`👑\s*[iI]Phone\s+\d+`)
	reReiHeader         = regexp.MustCompile(`^👑\s*[iI]Phone\s+\d+`)
	reReiAltHeader      = regexp.MustCompile(`^[iI]Phone\s+\d+\s+(?:PRO|Pro|pro)?(?:\s+(?:MAX|Max|max))?\s+\d+GB`)
	reReiModel          = regexp.MustCompile(`(?i)iPhone\s+(\d+(?:\s+pro)?(?:\s+max)?)\s+(\d+\s*(?:GB|TB))`)
	reReiAltModel       = regexp.MustCompile(`(?i)iPhone\s+([^\d]+?\s+\d+|\d+\s+[^\d]+?)\s+(\d+\s*(?:GB|TB))`)
	reReiColorLine      = regexp.MustCompile(`(?i)[🟠⚫🔵⚪🟣🟡🟢♥🔴💛🟤]|^(PRETO|BRANCO|AZUL|VERMELHO|DOURADO|VERDE|ROXO)|preto|azul|branco`)
	reReiSweep          = regexp.MustCompile(`(?:👑\s*)?[iI]Phone\s+(\d+(?:\s+(?:Pro|PRO|pro))?(?:\s+(?:Max|MAX|max))?)\s+(\d+(?:GB|TB))[^\n]*?R\$\s*([\d.,]+)`)
)

var reiSectionMarkers = []string{"👑 Seminovo", "BOM DIA", "Seminovo", "SEM DETALHES", "SEM ACESSÓRIOS"}

// ReiDasCaixas reads crown-marked lists: a model header, optional color
// lines, then a price that commits one product per buffered color.
//
//	👑 iPhone 15 PRO Max 256GB Americano
//	⚫ Preto 🔵 Azul
//	R$ 6.500,00
type ReiDasCaixas struct {
	log logrus.FieldLogger
}

func NewReiDasCaixas(log logrus.FieldLogger) *ReiDasCaixas {
	return &ReiDasCaixas{log: log.WithField("processor", ReiDasCaixasName)}
}

func (p *ReiDasCaixas) Name() string { return ReiDasCaixasName }

func (p *ReiDasCaixas) CanProcess(text string) bool {
	crowns := strings.Count(text, "👑") > 3
	name := strings.Contains(text, "REI DAS CAIXAS") ||
		strings.Contains(text, "BOM DIA") ||
		strings.Contains(text, "Rei das Caixas")
	pattern := strings.Contains(text, "👑 iPhone") ||
		strings.Contains(text, "👑IPhone") ||
		reReiProductPattern.MatchString(text)

	p.log.WithFields(logrus.Fields{
		"crowns":  crowns,
		"name":    name,
		"pattern": pattern,
	}).Debug("avaliação de formato")

	return (crowns && (name || pattern)) || (name && pattern)
}

type reiScan struct {
	state    scanState
	details  model.ProductDetails
	price    float64
	colors   []string
	products []model.RawProduct
}

func (p *ReiDasCaixas) ExtractProducts(text, source string) []model.RawProduct {
	log := p.log.WithField("source", source)
	s := &reiScan{state: awaitingSection}
	for i, line := range splitLines(text) {
		p.step(log, s, i, line)
	}
	if s.details.Model != "" && s.price > 0 {
		p.commit(s)
	}
	log.Infof("%d produtos extraídos", len(s.products))

	if len(s.products) == 0 {
		log.Info("nenhum produto na leitura por linhas, tentando varredura do texto")
		s.products = p.sweep(log, text)
	}
	if len(s.products) == 0 {
		log.WithFields(logrus.Fields{
			"has_iphone": strings.Contains(text, "iPhone") || strings.Contains(text, "IPHONE"),
			"has_price":  strings.Contains(text, "R$"),
		}).Warn("nenhum produto encontrado")
	}
	return s.products
}

func (p *ReiDasCaixas) step(log logrus.FieldLogger, s *reiScan, i int, line string) {
	header := reReiHeader.MatchString(line) || reReiAltHeader.MatchString(line)

	if s.state == awaitingSection {
		switch {
		case containsAny(line, reiSectionMarkers):
			s.state.enter(log, i, awaitingModel)
			log.WithField("line", i).Debug("início da seção de produtos")
			if !header {
				return
			}
		case i > 10 && reReiForcedStart.MatchString(line):
			s.state.enter(log, i, awaitingModel)
		default:
			return
		}
	}

	if header {
		if s.details.Model != "" && s.price > 0 {
			p.commit(s)
		}
		s.details = reiModelInfo(line)
		s.colors = nil
		s.price = 0
		s.state.enter(log, i, awaitingColorOrPrice)
		if m := rePrice.FindStringSubmatch(line); m != nil {
			if price, ok := linePrice(log, i, m[1]); ok {
				s.price = price
			}
		}
		return
	}

	if containsAny(line, reiSectionMarkers) || s.details.Model == "" {
		return
	}

	if m := rePrice.FindStringSubmatch(line); m != nil {
		price, ok := linePrice(log, i, m[1])
		if !ok {
			return
		}
		s.price = price
		if len(s.colors) == 0 {
			s.colors = normalize.ExtractColors(line)
		}
		p.commit(s)
		return
	}

	if reReiColorLine.MatchString(line) {
		s.colors = appendUnique(s.colors, normalize.ExtractColors(line)...)
	}
}

// commit emits one product per buffered color, or one N/A product, and
// resets the price and color buffer.
func (p *ReiDasCaixas) commit(s *reiScan) {
	colors := s.colors
	if len(colors) == 0 {
		colors = []string{reiNoColor}
	}
	for _, color := range colors {
		d := s.details
		d.Color = color
		s.products = append(s.products, reiProduct(d, s.price))
	}
	s.colors = nil
	s.price = 0
}

func reiProduct(d model.ProductDetails, price float64) model.RawProduct {
	desc := describe(d.Model, d.Storage, d.Color)
	if d.Region != "" {
		desc += " (" + d.Region + ")"
	}
	return model.RawProduct{
		Code:        localCode("REI", d.Model, d.Storage, d.Color, d.Region),
		Description: desc + " - " + ReiDasCaixasName,
		Price:       price,
		Source:      ReiDasCaixasName,
		Details:     &d,
	}
}

// reiModelInfo reads model, storage, region and condition from a header line.
func reiModelInfo(line string) model.ProductDetails {
	clean := strings.TrimSpace(strings.TrimPrefix(line, "👑"))
	d := model.ProductDetails{Brand: "Apple", Condition: "Seminovo"}

	m := reReiModel.FindStringSubmatch(clean)
	if m == nil {
		m = reReiAltModel.FindStringSubmatch(clean)
	}
	if m != nil {
		d.Model = "iPhone " + strings.Join(strings.Fields(m[1]), " ")
		d.Storage = strings.ToUpper(strings.Join(strings.Fields(m[2]), ""))
	}

	d.Region = reiRegion(clean)
	switch {
	case strings.Contains(clean, "Swap") || strings.Contains(clean, "SWAP"):
		d.Condition = "Swap"
	case strings.Contains(clean, "NUNCA FOI ATIVADO"):
		d.Condition = "Novo"
	}
	return d
}

func reiRegion(text string) string {
	switch {
	case strings.Contains(text, "Americano") || strings.Contains(text, "AMERICANO") || strings.Contains(text, "🇺🇸"):
		return "USA"
	case strings.Contains(text, "Dubai") || strings.Contains(text, "DUBAI"):
		return "Dubai"
	}
	return ""
}

// sweep matches whole model-to-price spans across the text, for documents
// whose line layout drifted from the usual one.
func (p *ReiDasCaixas) sweep(log logrus.FieldLogger, text string) []model.RawProduct {
	var products []model.RawProduct
	for _, m := range reReiSweep.FindAllStringSubmatch(text, -1) {
		price, ok := linePrice(log, -1, m[3])
		if !ok {
			continue
		}
		full := m[0]
		d := model.ProductDetails{
			Brand:     "Apple",
			Model:     "iPhone " + strings.Join(strings.Fields(m[1]), " "),
			Storage:   m[2],
			Condition: "Seminovo",
			Region:    reiRegion(full),
			Color:     reiNoColor,
		}
		switch {
		case strings.Contains(full, "Swap") || strings.Contains(full, "SWAP"):
			d.Condition = "Swap"
		case strings.Contains(full, "NUNCA FOI ATIVADO"):
			d.Condition = "Novo"
		}
		if colors := normalize.ExtractColors(full); len(colors) > 0 {
			d.Color = colors[0]
		}
		products = append(products, reiProduct(d, price))
	}
	log.Infof("varredura encontrou %d produtos", len(products))
	return products
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, have := range list {
			if have == it {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}
