package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"pricelist/internal/model"
	"pricelist/internal/observability"
	"pricelist/internal/retry"
)

const schema = `
CREATE TABLE IF NOT EXISTS suppliers (
	id   uuid PRIMARY KEY,
	name text NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS products (
	id          uuid PRIMARY KEY,
	code        text NOT NULL UNIQUE,
	description text NOT NULL,
	brand       text NOT NULL DEFAULT '',
	model       text NOT NULL DEFAULT '',
	storage     text NOT NULL DEFAULT '',
	color       text NOT NULL DEFAULT '',
	condition   text NOT NULL DEFAULT '',
	extra       text NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prices (
	id          uuid PRIMARY KEY,
	product_id  uuid NOT NULL REFERENCES products(id),
	supplier_id uuid NOT NULL REFERENCES suppliers(id),
	price       numeric(12,2) NOT NULL,
	updated_at  timestamptz NOT NULL DEFAULT now(),
	UNIQUE (product_id, supplier_id)
);
`

// productStore is the narrow set of writes SaveProducts needs.
type productStore interface {
	SupplierID(ctx context.Context, name string) (uuid.UUID, error)
	UpsertProduct(ctx context.Context, p model.RawProduct) (uuid.UUID, error)
	// UpsertPrice reports whether a row was inserted or its price changed.
	UpsertPrice(ctx context.Context, productID, supplierID uuid.UUID, price decimal.Decimal) (bool, error)
}

type sqlStore struct {
	db *sql.DB
}

func (s *sqlStore) SupplierID(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO suppliers (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, uuid.New(), name).Scan(&id)
	return id, err
}

func (s *sqlStore) UpsertProduct(ctx context.Context, p model.RawProduct) (uuid.UUID, error) {
	var d model.ProductDetails
	if p.Details != nil {
		d = *p.Details
	}
	var id uuid.UUID
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, code, description, brand, model, storage, color, condition, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (code) DO UPDATE SET
			description = EXCLUDED.description,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			storage = EXCLUDED.storage,
			color = EXCLUDED.color,
			condition = EXCLUDED.condition,
			extra = EXCLUDED.extra
		RETURNING id
	`, uuid.New(), p.Code, p.Description, d.Brand, d.Model, d.Storage, d.Color, d.Condition, d.Extra).Scan(&id)
	return id, err
}

func (s *sqlStore) UpsertPrice(ctx context.Context, productID, supplierID uuid.UUID, price decimal.Decimal) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (id, product_id, supplier_id, price, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, supplier_id) DO UPDATE SET
			price = EXCLUDED.price,
			updated_at = now()
		WHERE prices.price <> EXCLUDED.price
	`, uuid.New(), productID, supplierID, price)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type SaveOptions struct {
	RatePerSecond float64
	MaxRetries    int
	RetryDelay    time.Duration
}

type SaveSummary struct {
	Saved     int `json:"saved"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// ProductRepository persists normalized products and the latest price each
// supplier quoted for them.
type ProductRepository struct {
	store   productStore
	db      *sql.DB
	limiter *rate.Limiter
	retryer *retry.Retryer
	log     logrus.FieldLogger

	mu        sync.Mutex
	suppliers map[string]uuid.UUID
}

func NewProductRepository(db *sql.DB, opts SaveOptions, log logrus.FieldLogger) *ProductRepository {
	r := newProductRepository(&sqlStore{db: db}, opts, log)
	r.db = db
	return r
}

func newProductRepository(store productStore, opts SaveOptions, log logrus.FieldLogger) *ProductRepository {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 20
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	cfg := retry.DefaultConfig("salvar-produto")
	cfg.MaxAttempts = opts.MaxRetries
	cfg.Retryable = isTransient
	if opts.RetryDelay > 0 {
		cfg.BaseDelay = opts.RetryDelay
		cfg.MaxDelay = 8 * opts.RetryDelay
	}

	log = log.WithField("component", "repository")
	return &ProductRepository{
		store:     store,
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSecond), 10),
		retryer:   retry.New(cfg, log),
		log:       log,
		suppliers: make(map[string]uuid.UUID),
	}
}

func (r *ProductRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return errors.New("no database configured")
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create schema")
	}
	return nil
}

// SaveProducts writes each product and its price. A failing product is
// logged and counted; only a cancelled context stops the batch.
func (r *ProductRepository) SaveProducts(ctx context.Context, products []model.RawProduct) (SaveSummary, error) {
	var summary SaveSummary
	for _, p := range products {
		if err := r.limiter.Wait(ctx); err != nil {
			return summary, err
		}

		var changed bool
		err := r.retryer.Do(ctx, func() error {
			var err error
			changed, err = r.save(ctx, p)
			return err
		})

		switch {
		case err != nil && ctx.Err() != nil:
			return summary, ctx.Err()
		case err != nil:
			summary.Failed++
			observability.PersistedProducts.WithLabelValues("failed").Inc()
			r.log.WithFields(logrus.Fields{
				"code":   p.Code,
				"source": p.Source,
			}).WithError(err).Error("erro ao salvar produto")
		case changed:
			summary.Saved++
			observability.PersistedProducts.WithLabelValues("saved").Inc()
		default:
			summary.Unchanged++
			observability.PersistedProducts.WithLabelValues("unchanged").Inc()
		}
	}

	r.log.WithFields(logrus.Fields{
		"saved":     summary.Saved,
		"unchanged": summary.Unchanged,
		"failed":    summary.Failed,
	}).Info("persistência concluída")
	return summary, nil
}

func (r *ProductRepository) save(ctx context.Context, p model.RawProduct) (bool, error) {
	supplierID, err := r.supplierID(ctx, p.Source)
	if err != nil {
		return false, errors.Wrap(err, "supplier")
	}
	productID, err := r.store.UpsertProduct(ctx, p)
	if err != nil {
		return false, errors.Wrap(err, "product")
	}
	price := decimal.NewFromFloat(p.Price).Round(2)
	changed, err := r.store.UpsertPrice(ctx, productID, supplierID, price)
	if err != nil {
		return false, errors.Wrap(err, "price")
	}
	return changed, nil
}

func (r *ProductRepository) supplierID(ctx context.Context, name string) (uuid.UUID, error) {
	r.mu.Lock()
	id, ok := r.suppliers[name]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := r.store.SupplierID(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	r.mu.Lock()
	r.suppliers[name] = id
	r.mu.Unlock()
	return id, nil
}

// isTransient rejects constraint violations and bad data, which fail the
// same way on every attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "22", "23", "42":
			return false
		}
	}
	return true
}
