package pricing

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidPrice is returned when a price token does not resolve to a
// finite positive number.
var ErrInvalidPrice = errors.New("invalid price")

// AccessoryCentsThreshold is the value from which an accessory price is
// assumed to be written in cents.
const AccessoryCentsThreshold = 1000

// ParsePrice converts a price fragment such as "R$ 1.450,00", "R$1,400.00",
// "6500" or "1.234.56" into whole currency units.
//
// Rules, first match wins:
//   - no separator: the integer is returned as written, never divided
//   - last separator followed by exactly two digits: decimal separator
//   - a single separator otherwise: thousands separator
//   - mixed separators: the last one is the decimal separator
//   - repeated separators of one kind: thousands when the last group has
//     three digits, otherwise the last one is the decimal separator
func ParsePrice(raw string) (float64, error) {
	cleaned := strings.TrimRight(clean(raw), ".,")
	if cleaned == "" || strings.Trim(cleaned, ".,") == "" {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q", raw)
	}

	number := canonical(cleaned)
	d, err := decimal.NewFromString(number)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q: %v", raw, err)
	}
	if !d.IsPositive() {
		return 0, errors.Wrapf(ErrInvalidPrice, "%q: not positive", raw)
	}

	f, _ := d.Float64()
	return f, nil
}

// AccessoryPrice applies the accessory-only cents heuristic: prices at or
// above AccessoryCentsThreshold are divided by 100. Only processors that
// know the item is a cable/adapter-like accessory call it.
func AccessoryPrice(price float64) float64 {
	if price >= AccessoryCentsThreshold {
		return decimal.NewFromFloat(price).Div(decimal.NewFromInt(100)).InexactFloat64()
	}
	return price
}

func clean(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// canonical rewrites a cleaned token into a plain "1234.56" string.
func canonical(s string) string {
	last := strings.LastIndexAny(s, ".,")
	if last < 0 {
		return s
	}

	tail := s[last+1:]
	head := s[:last]
	separators := strings.Count(s, ".") + strings.Count(s, ",")

	decimalAtLast := false
	switch {
	case len(tail) == 2:
		decimalAtLast = true
	case separators == 1:
		decimalAtLast = false
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		decimalAtLast = true
	case len(tail) == 3:
		decimalAtLast = false
	default:
		decimalAtLast = true
	}

	digits := stripSeparators(head)
	if !decimalAtLast {
		return digits + tail
	}
	if tail == "" {
		return digits
	}
	if digits == "" {
		digits = "0"
	}
	return digits + "." + tail
}

func stripSeparators(s string) string {
	return strings.NewReplacer(".", "", ",", "").Replace(s)
}
