package repository

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"pricelist/internal/aggregate"
	"pricelist/internal/model"
)

// priceRow is one stored (product, supplier, price) row.
type priceRow struct {
	Code        string
	Description string
	Details     model.ProductDetails
	Supplier    string
	Price       float64
}

// ComparisonRepository reads stored prices back as comparison results.
type ComparisonRepository struct {
	DB  *pgxpool.Pool
	Log logrus.FieldLogger
}

// List returns every stored product, optionally filtered by a substring of
// its code or description, with its prices merged across suppliers.
func (r *ComparisonRepository) List(ctx context.Context, filter string) ([]model.ComparisonResult, error) {
	query := `
		SELECT p.code, p.description, p.brand, p.model, p.storage, p.color, p.condition, p.extra,
		       s.name, pr.price::float8
		FROM prices pr
		JOIN products p ON p.id = pr.product_id
		JOIN suppliers s ON s.id = pr.supplier_id`
	var params []any
	if f := strings.TrimSpace(filter); f != "" {
		query += "\n\t\tWHERE p.description ILIKE $1 OR p.code ILIKE $1"
		params = append(params, "%"+f+"%")
	}
	query += "\n\t\tORDER BY p.code, pr.price, pr.updated_at"

	if r.Log != nil {
		r.Log.WithField("filter", filter).Debugf("consulta de comparação: %s", query)
	}

	rows, err := r.DB.Query(ctx, query, params...)
	if err != nil {
		return nil, errors.Wrap(err, "query prices")
	}
	defer rows.Close()

	var list []priceRow
	for rows.Next() {
		var row priceRow
		d := &row.Details
		if err := rows.Scan(&row.Code, &row.Description, &d.Brand, &d.Model, &d.Storage, &d.Color, &d.Condition, &d.Extra, &row.Supplier, &row.Price); err != nil {
			return nil, errors.Wrap(err, "scan price row")
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate prices")
	}
	return buildResults(list), nil
}

// buildResults folds stored rows through aggregate.Merge.
func buildResults(rows []priceRow) []model.ComparisonResult {
	products := make([]model.RawProduct, 0, len(rows))
	for _, row := range rows {
		var details *model.ProductDetails
		if row.Details.Model != "" {
			d := row.Details
			details = &d
		}
		products = append(products, model.RawProduct{
			Code:        row.Code,
			Description: row.Description,
			Price:       row.Price,
			Source:      row.Supplier,
			Details:     details,
		})
	}
	return aggregate.Sorted(aggregate.Merge(nil, products))
}
