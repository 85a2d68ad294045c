package supplier

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"pricelist/internal/model"
	"pricelist/internal/normalize"
)

const CSVName = "csv"

var (
	csvDescriptionHeaders = []string{"produto", "descricao", "description", "modelo", "model", "nome"}
	csvPriceHeaders       = []string{"preco", "valor", "price"}
	csvCodeHeaders        = []string{"codigo", "cod", "code", "sku"}
	csvStorageHeaders     = []string{"armazenamento", "capacidade", "storage", "memoria"}
	csvColorHeaders       = []string{"cor", "color", "colour"}

	reCSVCode = regexp.MustCompile(`^\d{5,6}-\d+$`)
)

type csvColumns struct {
	description, price, code, storage, color int
}

// looksDelimited reports whether text may be a ',' or ';' separated table.
func looksDelimited(text string) bool {
	return strings.ContainsAny(text, ",;")
}

// sniffCSV reads text as a delimited table with a header row. Columns are
// found by fuzzy header names; rows without a valid price are skipped.
func sniffCSV(log logrus.FieldLogger, text, source string) []model.RawProduct {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ','
	if strings.Contains(text, ";") {
		r.Comma = ';'
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var (
		cols     csvColumns
		header   bool
		products []model.RawProduct
	)
	for row := 0; ; row++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithField("line", row).WithError(err).Debug("linha CSV ignorada")
			continue
		}
		if blankRecord(rec) {
			continue
		}
		if !header {
			var ok bool
			if cols, ok = csvHeader(rec); !ok {
				log.WithField("header", rec).Debug("cabeçalho CSV sem colunas de descrição e preço")
				return nil
			}
			header = true
			continue
		}

		description := field(rec, cols.description)
		if description == "" {
			continue
		}
		price, ok := linePrice(log, row, field(rec, cols.price))
		if !ok {
			continue
		}
		code := field(rec, cols.code)
		if code == "" {
			code = rowCode(rec, row)
		}

		p := fallbackProduct(code, description, price, source)
		if p.Details != nil {
			if s := field(rec, cols.storage); s != "" {
				p.Details.Storage = s
			}
			if c := field(rec, cols.color); c != "" {
				p.Details.Color = normalize.NormalizeColor(c)
			}
		}
		products = append(products, p)
	}
	return products
}

func csvHeader(rec []string) (csvColumns, bool) {
	cols := csvColumns{
		description: headerIndex(rec, csvDescriptionHeaders),
		price:       headerIndex(rec, csvPriceHeaders),
		code:        headerIndex(rec, csvCodeHeaders),
		storage:     headerIndex(rec, csvStorageHeaders),
		color:       headerIndex(rec, csvColorHeaders),
	}
	return cols, cols.description >= 0 && cols.price >= 0
}

// headerIndex returns the first column whose folded name contains one of
// the synonyms, or -1.
func headerIndex(rec []string, synonyms []string) int {
	for _, syn := range synonyms {
		for i, name := range rec {
			if strings.Contains(normalize.Fold(name), syn) {
				return i
			}
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// rowCode uses a code-shaped cell when the table has no code column.
func rowCode(rec []string, row int) string {
	for _, v := range rec {
		if v = strings.TrimSpace(v); reCSVCode.MatchString(v) {
			return v
		}
	}
	return fmt.Sprintf("CSV-%d", row)
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
