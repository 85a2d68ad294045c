package supplier

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/normalize"
)

const GenericName = "generic"

var reGenericProduct = regexp.MustCompile(`(?m)(\d{5,6}-\d+)\s+(.+?)\s+(\d{1,3}(?:[.,]\d{3})*[.,]\d{2})(?:R\$)?`)

// extractGeneric finds "code description price" records anywhere in text.
func extractGeneric(log logrus.FieldLogger, text, source string) []model.RawProduct {
	var products []model.RawProduct
	for _, m := range reGenericProduct.FindAllStringSubmatch(text, -1) {
		price, ok := linePrice(log, -1, m[3])
		if !ok {
			continue
		}
		products = append(products, fallbackProduct(m[1], strings.TrimSpace(m[2]), price, source))
	}
	return products
}

// fallbackProduct attaches details only when the description names a known
// device family; otherwise the product keeps its vendor code.
func fallbackProduct(code, description string, price float64, source string) model.RawProduct {
	p := model.RawProduct{
		Code:        code,
		Description: description,
		Price:       price,
		Source:      source,
	}
	if d, ok := normalize.DetectFamily(description, ""); ok {
		p.Details = &d
	}
	return p
}
