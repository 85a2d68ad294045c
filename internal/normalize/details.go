package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-faster/errors"

	"pricelist/internal/model"
)

// ErrMalformedDetails is returned when details cannot produce a comparison key.
var ErrMalformedDetails = errors.New("malformed product details")

// Key is the canonical identity of a product across suppliers.
type Key struct {
	Code        string
	Description string
}

var reIPhoneModel = regexp.MustCompile(`^(\d{1,2}e?|xr|xs|x|se)(?:\s+(pro|max|plus|mini|ultra|se))?(?:\s+(pro|max|plus|mini|ultra|se))?$`)

// colorSynonyms is matched in order against the folded color; first hit wins.
var colorSynonyms = []struct {
	contains string
	canon    string
}{
	{"space gray", "gray"},
	{"cinza espacial", "gray"},
	{"cinza", "gray"},
	{"grafite", "black"},
	{"graphite", "black"},
	{"midnight", "black"},
	{"meia-noite", "black"},
	{"meia noite", "black"},
	{"preto", "black"},
	{"preta", "black"},
	{"black", "black"},
	{"starlight", "white"},
	{"estelar", "white"},
	{"branco", "white"},
	{"branca", "white"},
	{"white", "white"},
	{"azul", "blue"},
	{"blue", "blue"},
	{"roxo", "purple"},
	{"roxa", "purple"},
	{"lilas", "purple"},
	{"purple", "purple"},
	{"verde", "green"},
	{"green", "green"},
	{"vermelho", "red"},
	{"vermelha", "red"},
	{"dourado", "gold"},
	{"dourada", "gold"},
	{"gold", "gold"},
	{"rosa", "pink"},
	{"rose", "pink"},
	{"pink", "pink"},
	{"prata", "silver"},
	{"prateado", "silver"},
	{"silver", "silver"},
	{"deserto", "desert"},
	{"desert", "desert"},
	{"natural", "natural"},
	{"marrom", "brown"},
	{"brown", "brown"},
	{"laranja", "orange"},
	{"orange", "orange"},
	{"red", "red"},
}

// Normalize derives the comparison key for details. Two listings of the same
// device from different suppliers yield the same Code.
func Normalize(d model.ProductDetails) (Key, error) {
	m := Fold(d.Model)
	if m == "" {
		return Key{}, errors.Wrapf(ErrMalformedDetails, "empty model for brand %q", d.Brand)
	}

	brand := Fold(d.Brand)
	if brand == "" {
		brand = "unknown"
	}

	code := fmt.Sprintf("%s-%s-%s-%s-%s",
		brand,
		canonicalModel(m),
		canonicalStorage(d.Storage),
		canonicalColor(d.Color),
		canonicalCondition(d.Condition),
	)
	code = reSpaces.ReplaceAllString(code, "-")
	code = reHyphens.ReplaceAllString(code, "-")
	code = strings.TrimRight(code, "-")

	return Key{Code: code, Description: describe(d)}, nil
}

func canonicalModel(folded string) string {
	stripped := collapseSpaces(strings.Replace(folded, "iphone", "", 1))
	sm := reIPhoneModel.FindStringSubmatch(stripped)
	if sm == nil {
		return folded
	}
	parts := []string{sm[1]}
	for _, s := range sm[2:] {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "-")
}

func canonicalStorage(storage string) string {
	s := Fold(reSpaces.ReplaceAllString(storage, ""))
	if s == "" {
		return ""
	}
	if strings.Trim(s, "0123456789") == "" {
		return s + "gb"
	}
	return s
}

func canonicalColor(color string) string {
	c := Fold(color)
	for _, syn := range colorSynonyms {
		if strings.Contains(c, syn.contains) {
			return syn.canon
		}
	}
	return c
}

func canonicalCondition(condition string) string {
	c := Fold(condition)
	if strings.Contains(c, "semi") || strings.Contains(c, "usado") {
		return "used"
	}
	return "new"
}

func describe(d model.ProductDetails) string {
	var parts []string
	for _, f := range []string{d.Brand, d.Model, d.Storage, d.Color, d.Condition} {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
