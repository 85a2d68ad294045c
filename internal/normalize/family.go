package normalize

import (
	"regexp"
	"strings"

	"pricelist/internal/model"
)

// Family identifies the Apple device line a description belongs to.
type Family string

const (
	FamilyIPhone  Family = "iphone"
	FamilyMacBook Family = "macbook"
	FamilyWatch   Family = "watch"
	FamilyIPad    Family = "ipad"
	FamilyAirPods Family = "airpods"
	FamilyOther   Family = ""
)

const modelSuffixes = `PRO|AIR|MINI|MAX|PLUS|ULTRA|SE`

var (
	reFamilyIPhone   = regexp.MustCompile(`(?i)\bIPHONE\s*((?:` + modelSuffixes + `)?)\s*(\d{1,2}(?:\.\d+)?E?|XR|XS|X|SE)(?:\b|(` + modelSuffixes + `)\b)((?:\s*\b(?:` + modelSuffixes + `)\b){0,2})`)
	reFamilyMacBook  = regexp.MustCompile(`(?i)\b(?:MACBOOK|NB\s+APPLE)\s*(PRO|AIR)?\b`)
	reChip           = regexp.MustCompile(`(?i)\b(M\d+(?:\s+(?:PRO|MAX))?)\b`)
	reFamilyWatch    = regexp.MustCompile(`(?i)\bWATCH\s*(ULTRA|SE)?\s*(S\d+|SERIES\s*\d+|\d+)?\b`)
	reFamilyIPad     = regexp.MustCompile(`(?i)\bIPAD\s*(PRO|AIR|MINI)?\s*(\d+(?:TH|RD|ND|ST)?(?:-GERA)?|M\d+(?:\s+(?:PRO|MAX))?)?\b`)
	reFamilyAirPods  = regexp.MustCompile(`(?i)\bAIRPODS\s*(PRO|MAX)?\s*(\d+)?\b`)
	reStorage        = regexp.MustCompile(`(?i)\b(\d+\s*(?:GB|TB))\b`)
	reDescColor      = regexp.MustCompile(`(?i)\b(SPACE GRAY|LIGHT PINK|PRETO|BRANCO|GRAFITE|AZUL|VERDE|ROXO|DOURADO|GOLD|ROSA|PINK|RED|VERMELHO|SILVER|CINZA|STARLIGHT|BLACK|BLUE|MIDNIGHT|PURPLE|NATURAL|DESERT|WHITE|ORANGE|YELLOW|ULTRAMARINE)\b`)
	reUsedMarker     = regexp.MustCompile(`(?i)\b(usado|seminovo|swap|cpo)\b`)
	rePriceRemainder = regexp.MustCompile(`\s*R\$.*$`)
)

var suffixCase = map[string]string{
	"PRO": "Pro", "AIR": "Air", "MINI": "Mini", "MAX": "Max",
	"PLUS": "Plus", "ULTRA": "Ultra", "SE": "SE",
}

// Decompose splits a free-text description into details, using the category
// header as a hint. Families are tried in a fixed order: iPhone, MacBook,
// Watch, iPad, AirPods. Descriptions outside those families keep the
// description itself as the model and report FamilyOther.
func Decompose(description, category string) (model.ProductDetails, Family) {
	desc := strings.ToUpper(description)
	cat := strings.ToUpper(category)

	d := model.ProductDetails{Brand: "Apple"}
	var family Family
	switch {
	case strings.Contains(cat, "IPHONE") || strings.Contains(desc, "IPHONE") || strings.Contains(desc, "CEL APPLE"):
		family, d.Model = FamilyIPhone, iphoneModel(description)
	case strings.Contains(cat, "MACBOOK") || strings.Contains(desc, "MACBOOK") || strings.Contains(desc, "NB APPLE"):
		family, d.Model = FamilyMacBook, macbookModel(description)
	case strings.Contains(cat, "WATCH") || strings.Contains(desc, "WATCH"):
		family, d.Model = FamilyWatch, watchModel(description)
	case strings.Contains(cat, "TABLET") || strings.Contains(desc, "IPAD"):
		family, d.Model = FamilyIPad, ipadModel(description)
	case strings.Contains(cat, "FONE") || strings.Contains(desc, "AIRPODS") || strings.Contains(desc, "FONE"):
		family, d.Model = FamilyAirPods, airpodsModel(description)
	default:
		family, d.Model = FamilyOther, GenericModel(description)
	}

	if m := reStorage.FindStringSubmatch(description); m != nil {
		d.Storage = strings.ToUpper(reSpaces.ReplaceAllString(m[1], ""))
	}
	if m := reDescColor.FindStringSubmatch(description); m != nil {
		d.Color = strings.ToUpper(m[1])
	}
	d.Condition = "Novo"
	if reUsedMarker.MatchString(description) {
		d.Condition = "Seminovo"
	}
	return d, family
}

// DetectFamily is Decompose restricted to the known device families.
func DetectFamily(description, category string) (model.ProductDetails, bool) {
	d, family := Decompose(description, category)
	if family == FamilyOther {
		return model.ProductDetails{}, false
	}
	return d, true
}

func iphoneModel(description string) string {
	m := reFamilyIPhone.FindStringSubmatch(description)
	if m == nil {
		return "iPhone"
	}
	parts := []string{"iPhone"}
	if m[1] != "" {
		parts = append(parts, titleSuffix(m[1]))
	}
	parts = append(parts, strings.ToUpper(m[2]))
	if m[3] != "" {
		parts = append(parts, titleSuffix(m[3]))
	}
	for _, s := range strings.Fields(m[4]) {
		parts = append(parts, titleSuffix(s))
	}
	return strings.Join(parts, " ")
}

func macbookModel(description string) string {
	parts := []string{"MacBook"}
	if m := reFamilyMacBook.FindStringSubmatch(description); m != nil && m[1] != "" {
		parts = append(parts, titleSuffix(m[1]))
	}
	if m := reChip.FindStringSubmatch(description); m != nil {
		parts = append(parts, strings.ToUpper(collapseSpaces(m[1])))
	}
	return strings.Join(parts, " ")
}

func watchModel(description string) string {
	parts := []string{"Apple Watch"}
	if m := reFamilyWatch.FindStringSubmatch(description); m != nil {
		if m[1] != "" {
			parts = append(parts, titleSuffix(m[1]))
		}
		if m[2] != "" {
			parts = append(parts, strings.ToUpper(collapseSpaces(m[2])))
		}
	}
	return strings.Join(parts, " ")
}

func ipadModel(description string) string {
	parts := []string{"iPad"}
	if m := reFamilyIPad.FindStringSubmatch(description); m != nil {
		if m[1] != "" {
			parts = append(parts, titleSuffix(m[1]))
		}
		if m[2] != "" {
			parts = append(parts, strings.ToUpper(collapseSpaces(m[2])))
		}
	}
	return strings.Join(parts, " ")
}

func airpodsModel(description string) string {
	parts := []string{"AirPods"}
	if m := reFamilyAirPods.FindStringSubmatch(description); m != nil {
		if m[1] != "" {
			parts = append(parts, titleSuffix(m[1]))
		}
		if m[2] != "" {
			parts = append(parts, m[2])
		}
	}
	return strings.Join(parts, " ")
}

// GenericModel is the description with any trailing price text removed.
func GenericModel(description string) string {
	return collapseSpaces(rePriceRemainder.ReplaceAllString(description, ""))
}

func titleSuffix(s string) string {
	u := strings.ToUpper(strings.TrimSpace(s))
	if t, ok := suffixCase[u]; ok {
		return t
	}
	return u
}
