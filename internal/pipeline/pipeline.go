package pipeline

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"pricelist/internal/aggregate"
	"pricelist/internal/document"
	"pricelist/internal/model"
	"pricelist/internal/normalize"
	"pricelist/internal/observability"
	"pricelist/internal/supplier"
)

// ErrUnreadableDocument is returned for input that is not UTF-8 text.
var ErrUnreadableDocument = errors.New("unreadable document")

// Extractor picks a processor for a document and extracts its products.
type Extractor interface {
	Extract(text, filename string) supplier.Extraction
}

// Report summarizes one document of a batch.
type Report struct {
	Source    string `json:"source"`
	Processor string `json:"processor,omitempty"`
	Products  int    `json:"products"`
	Dropped   int    `json:"dropped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Batch is the merged outcome of several documents.
type Batch struct {
	Results  []model.ComparisonResult
	Products []model.RawProduct
	Reports  []Report
}

type Pipeline struct {
	extractor Extractor
	log       logrus.FieldLogger
	workers   int
}

func New(extractor Extractor, log logrus.FieldLogger, workers int) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	return &Pipeline{extractor: extractor, log: log, workers: workers}
}

// ProcessDocument extracts and normalizes the products of one document.
// An empty document yields no products and no error.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc document.Document) ([]model.RawProduct, Report, error) {
	report := Report{Source: doc.Name}
	if err := ctx.Err(); err != nil {
		report.Error = err.Error()
		return nil, report, err
	}
	if !utf8.ValidString(doc.Text) {
		observability.DocumentsTotal.WithLabelValues("unreadable").Inc()
		err := errors.Wrapf(ErrUnreadableDocument, "%s", doc.Name)
		report.Error = err.Error()
		return nil, report, err
	}

	ext := p.extractor.Extract(doc.Text, doc.Name)
	report.Processor = ext.Processor

	products := make([]model.RawProduct, 0, len(ext.Products))
	for _, raw := range ext.Products {
		np, ok := p.normalizeProduct(raw, doc.Name)
		if !ok {
			report.Dropped++
			continue
		}
		products = append(products, np)
	}
	report.Products = len(products)

	status := "ok"
	if len(products) == 0 {
		status = "empty"
	}
	observability.DocumentsTotal.WithLabelValues(status).Inc()
	p.log.WithFields(logrus.Fields{
		"source":    doc.Name,
		"processor": ext.Processor,
		"products":  report.Products,
		"dropped":   report.Dropped,
	}).Info("documento processado")

	return products, report, nil
}

func (p *Pipeline) normalizeProduct(raw model.RawProduct, source string) (model.RawProduct, bool) {
	if raw.Price <= 0 || math.IsInf(raw.Price, 0) || math.IsNaN(raw.Price) {
		observability.DroppedRecords.Inc()
		return raw, false
	}
	if raw.Details == nil {
		raw.Code = normalize.Fold(raw.Code)
		raw.Description = strings.TrimSpace(raw.Description)
		return raw, true
	}
	key, err := normalize.Normalize(*raw.Details)
	if err != nil {
		observability.DroppedRecords.Inc()
		p.log.WithFields(logrus.Fields{"source": source, "code": raw.Code}).WithError(err).Debug("produto descartado")
		return raw, false
	}
	raw.Code = key.Code
	raw.Description = key.Description
	return raw, true
}

// ProcessBatch runs documents on the worker pool and merges them into a
// fresh comparison.
func (p *Pipeline) ProcessBatch(ctx context.Context, docs []document.Document) (Batch, error) {
	return p.MergeBatch(ctx, nil, docs)
}

type docResult struct {
	products []model.RawProduct
	report   Report
}

// MergeBatch runs documents concurrently and merges them, in input order,
// into existing. Cancellation is checked between documents; the documents
// finished before it are still merged and ctx.Err() is returned.
func (p *Pipeline) MergeBatch(ctx context.Context, existing map[string]*model.ComparisonResult, docs []document.Document) (Batch, error) {
	results := make([]docResult, len(docs))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				products, report, err := p.ProcessDocument(ctx, docs[i])
				if err != nil {
					p.log.WithField("source", docs[i].Name).WithError(err).Warn("documento ignorado")
				}
				results[i] = docResult{products: products, report: report}
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case <-ctx.Done():
			for j := i; j < len(docs); j++ {
				results[j].report = Report{Source: docs[j].Name, Error: ctx.Err().Error()}
			}
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var batch Batch
	merged := existing
	for _, r := range results {
		merged = aggregate.Merge(merged, r.products)
		batch.Products = append(batch.Products, r.products...)
		batch.Reports = append(batch.Reports, r.report)
	}
	if merged == nil {
		merged = map[string]*model.ComparisonResult{}
	}
	batch.Results = aggregate.Sorted(merged)
	return batch, ctx.Err()
}
