package supplier

import (
	"testing"

	"pricelist/internal/logging"
	"pricelist/internal/normalize"
)

func TestSniffCSV(t *testing.T) {
	log := logging.Discard()

	t.Run("Semicolon with brazilian price", func(t *testing.T) {
		products := sniffCSV(log, "codigo;descricao;preco\n12345-1;iPhone 13 128GB;3.200,00\n", "lista.csv")
		if len(products) != 1 {
			t.Fatalf("expected 1 product, got %d", len(products))
		}
		p := products[0]
		if p.Price != 3200.00 {
			t.Errorf("expected price 3200.00, got %v", p.Price)
		}
		if p.Code != "12345-1" {
			t.Errorf("expected code 12345-1, got %q", p.Code)
		}
		if p.Source != "lista.csv" {
			t.Errorf("expected source lista.csv, got %q", p.Source)
		}
		if p.Details == nil || p.Details.Model != "iPhone 13" || p.Details.Storage != "128GB" {
			t.Errorf("expected iPhone 13 128GB details, got %+v", p.Details)
		}
	})

	t.Run("Comma with accented headers and extra columns", func(t *testing.T) {
		text := "Produto,Cor,Armazenamento,Preço\n" +
			"iPhone 14 Pro,Roxo,256GB,\"6.100,00\"\n" +
			"Capa,Preto,,\"89,90\"\n" +
			"iPhone 12,Azul,64GB,sem preço\n"
		products := sniffCSV(log, text, "lista.csv")
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
		first := products[0]
		if first.Price != 6100 {
			t.Errorf("expected price 6100, got %v", first.Price)
		}
		if first.Details == nil || first.Details.Color != normalize.Purple || first.Details.Storage != "256GB" {
			t.Errorf("expected purple 256GB details, got %+v", first.Details)
		}
		if products[1].Details != nil {
			t.Errorf("expected no details for unknown family, got %+v", products[1].Details)
		}
		if products[1].Code != "CSV-2" {
			t.Errorf("expected generated code CSV-2, got %q", products[1].Code)
		}
	})

	t.Run("Header without price column", func(t *testing.T) {
		if products := sniffCSV(log, "nome;quantidade\niPhone 13;2\n", "lista.csv"); len(products) != 0 {
			t.Errorf("expected no products, got %d", len(products))
		}
	})
}

func TestExtractGeneric(t *testing.T) {
	text := "123456-1 IPHONE 13 128GB PRETO 3.499,00\n" +
		"linha qualquer\n" +
		"65432-7 CARREGADOR 20W 149,90R$\n"
	products := extractGeneric(logging.Discard(), text, "tabela.txt")
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Code != "123456-1" || products[0].Price != 3499 {
		t.Errorf("unexpected first product %+v", products[0])
	}
	if products[0].Details == nil || products[0].Details.Model != "iPhone 13" {
		t.Errorf("expected iPhone details, got %+v", products[0].Details)
	}
	if products[1].Description != "CARREGADOR 20W" || products[1].Price != 149.90 {
		t.Errorf("unexpected second product %+v", products[1])
	}
}
