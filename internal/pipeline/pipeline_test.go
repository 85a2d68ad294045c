package pipeline

import (
	"context"
	"errors"
	"testing"

	"pricelist/internal/document"
	"pricelist/internal/logging"
	"pricelist/internal/model"
	"pricelist/internal/supplier"
)

type stubExtractor struct {
	ext supplier.Extraction
}

func (s stubExtractor) Extract(string, string) supplier.Extraction { return s.ext }

func newPipeline(workers int) *Pipeline {
	log := logging.Discard()
	return New(supplier.DefaultRegistry(log), log, workers)
}

func TestProcessDocumentNormalizesCodes(t *testing.T) {
	p := newPipeline(1)
	doc := document.Document{
		Name: "jc.txt",
		Text: "JC ATACADO LISTA\nIPHONES\n➖ 11 64GB\nR$ 1.450,00\n➡ Preto, Branco",
	}

	products, report, err := p.ProcessDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ProcessDocument returned error: %v", err)
	}
	expected := []string{"apple-11-64gb-black-used", "apple-11-64gb-white-used"}
	if len(products) != len(expected) {
		t.Fatalf("expected %d products, got %d", len(expected), len(products))
	}
	for i, code := range expected {
		if products[i].Code != code {
			t.Errorf("expected code %q, got %q", code, products[i].Code)
		}
	}
	if products[0].Description != "Apple iPhone 11 64GB Preto Seminovo" {
		t.Errorf("unexpected description %q", products[0].Description)
	}
	if report.Processor != supplier.JCAtacadoName || report.Products != 2 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestProcessDocumentEdgeCases(t *testing.T) {
	p := newPipeline(1)

	t.Run("Unreadable", func(t *testing.T) {
		_, report, err := p.ProcessDocument(context.Background(), document.Document{Name: "x.txt", Text: "\xff\xfe\xfd"})
		if !errors.Is(err, ErrUnreadableDocument) {
			t.Errorf("expected ErrUnreadableDocument, got %v", err)
		}
		if report.Error == "" {
			t.Error("expected report error")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		products, _, err := p.ProcessDocument(context.Background(), document.Document{Name: "x.txt", Text: "  \n"})
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if len(products) != 0 {
			t.Errorf("expected no products, got %d", len(products))
		}
	})

	t.Run("Fallback product keeps folded code", func(t *testing.T) {
		products, _, err := p.ProcessDocument(context.Background(), document.Document{
			Name: "x.txt",
			Text: "654321-9 CARREGADOR TURBO 149,90",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(products) != 1 || products[0].Code != "654321-9" {
			t.Errorf("unexpected products %+v", products)
		}
	})
}

func TestProcessDocumentDropsMalformed(t *testing.T) {
	ext := supplier.Extraction{
		Processor: "stub",
		Products: []model.RawProduct{
			{Code: "a", Price: 10, Source: "s", Details: &model.ProductDetails{Brand: "Apple"}},
			{Code: "b", Price: 0, Source: "s"},
			{Code: "C-1", Description: " capa ", Price: 5, Source: "s"},
		},
	}
	p := New(stubExtractor{ext: ext}, logging.Discard(), 1)

	products, report, err := p.ProcessDocument(context.Background(), document.Document{Name: "x.txt", Text: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", report.Dropped)
	}
	if len(products) != 1 || products[0].Code != "c-1" || products[0].Description != "capa" {
		t.Errorf("unexpected products %+v", products)
	}
}

func TestProcessBatchMergesSuppliers(t *testing.T) {
	p := newPipeline(4)
	docs := []document.Document{
		{Name: "zn.txt", Text: "📱APPLE  LACRADO📱\nIPHONE 13 128GB\n⬛ R$ 1.200,00"},
		{Name: "made.txt", Text: "MADE IN STORE\nIPHONE\n12345-1 IPHONE 13 128GB PRETO R$ 999,00"},
		{Name: "vazio.txt", Text: ""},
	}

	batch, err := p.ProcessBatch(context.Background(), docs)
	if err != nil {
		t.Fatalf("ProcessBatch returned error: %v", err)
	}
	if len(batch.Results) != 1 {
		t.Fatalf("expected 1 result, got %d: %+v", len(batch.Results), batch.Results)
	}
	got := batch.Results[0]
	if got.Code != "apple-13-128gb-black-new" {
		t.Errorf("unexpected code %q", got.Code)
	}
	if got.BestPrice != 999.00 {
		t.Errorf("expected best price 999.00, got %v", got.BestPrice)
	}
	if got.BestSource != supplier.MadeInStoreName {
		t.Errorf("expected best source %q, got %q", supplier.MadeInStoreName, got.BestSource)
	}
	if len(got.AllPrices) != 2 {
		t.Errorf("expected 2 prices, got %d", len(got.AllPrices))
	}

	if len(batch.Reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(batch.Reports))
	}
	for i, name := range []string{"zn.txt", "made.txt", "vazio.txt"} {
		if batch.Reports[i].Source != name {
			t.Errorf("expected report %d for %q, got %q", i, name, batch.Reports[i].Source)
		}
	}
	if len(batch.Products) != 2 {
		t.Errorf("expected 2 products, got %d", len(batch.Products))
	}
}

func TestMergeBatchIntoExisting(t *testing.T) {
	p := newPipeline(2)
	first, err := p.ProcessBatch(context.Background(), []document.Document{
		{Name: "zn.txt", Text: "📱APPLE  LACRADO📱\nIPHONE 13 128GB\n⬛ R$ 1.200,00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	existing := map[string]*model.ComparisonResult{}
	for i := range first.Results {
		r := first.Results[i]
		existing[r.Code] = &r
	}
	second, err := p.MergeBatch(context.Background(), existing, []document.Document{
		{Name: "made.txt", Text: "MADE IN STORE\nIPHONE\n12345-1 IPHONE 13 128GB PRETO R$ 1.100,00"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Results) != 1 || len(second.Results[0].AllPrices) != 2 {
		t.Fatalf("expected one result with two prices, got %+v", second.Results)
	}
	if second.Results[0].BestPrice != 1100 {
		t.Errorf("expected best price 1100, got %v", second.Results[0].BestPrice)
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	p := newPipeline(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch, err := p.ProcessBatch(ctx, []document.Document{
		{Name: "a.txt", Text: "x"},
		{Name: "b.txt", Text: "y"},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(batch.Results) != 0 {
		t.Errorf("expected no results, got %d", len(batch.Results))
	}
	for _, r := range batch.Reports {
		if r.Error == "" {
			t.Errorf("expected error in report for %s", r.Source)
		}
	}
}
