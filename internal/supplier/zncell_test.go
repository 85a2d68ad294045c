package supplier

import (
	"testing"

	"pricelist/internal/logging"
	"pricelist/internal/normalize"
)

const znDocument = `ZN CELL
📱APPLE  LACRADO📱
IPHONE 15 PRO MAX 256GB
⬛ R$ 7.300,00
🟦 R$ 7.250,00
🟥 R$ ,
SWAP AMERICANOS
IPHONE 13 128GB
⬜ R$ 2.500,00
ACESSÓRIOS APPLE
🔌 FONTE USB-C 20W R$ 14900
🎧 AIRPODS PRO 2 R$ 1.500,00`

func TestZNCellCanProcess(t *testing.T) {
	p := NewZNCell(logging.Discard())
	if !p.CanProcess(znDocument) {
		t.Error("expected document to be recognized")
	}
	if p.CanProcess("📱APPLE  LACRADO📱\nIPHONE 15 256GB") {
		t.Error("expected document without color emoji to be rejected")
	}
	if p.CanProcess("⬛ R$ 10,00") {
		t.Error("expected document without section marker to be rejected")
	}
}

func TestZNCellExtractProducts(t *testing.T) {
	p := NewZNCell(logging.Discard())
	products := p.ExtractProducts(znDocument, "zn.txt")

	if len(products) != 5 {
		t.Fatalf("expected 5 products, got %d", len(products))
	}

	tests := []struct {
		name      string
		index     int
		model     string
		storage   string
		color     string
		condition string
		price     float64
	}{
		{"Sealed black", 0, "IPHONE 15 PRO MAX", "256GB", normalize.Black, "Novo", 7300},
		{"Sealed blue", 1, "IPHONE 15 PRO MAX", "256GB", normalize.Blue, "Novo", 7250},
		{"Swap white", 2, "IPHONE 13", "128GB", normalize.White, "Seminovo Swap", 2500},
		{"Accessory in cents", 3, "FONTE USB-C 20W", "", "", "Novo", 149},
		{"AirPods", 4, "AirPods Pro 2", "", "", "Novo", 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := products[tt.index]
			if got.Details == nil {
				t.Fatal("expected details")
			}
			if got.Details.Model != tt.model {
				t.Errorf("expected model %q, got %q", tt.model, got.Details.Model)
			}
			if got.Details.Storage != tt.storage {
				t.Errorf("expected storage %q, got %q", tt.storage, got.Details.Storage)
			}
			if got.Details.Color != tt.color {
				t.Errorf("expected color %q, got %q", tt.color, got.Details.Color)
			}
			if got.Details.Condition != tt.condition {
				t.Errorf("expected condition %q, got %q", tt.condition, got.Details.Condition)
			}
			if got.Price != tt.price {
				t.Errorf("expected price %v, got %v", tt.price, got.Price)
			}
			if got.Source != ZNCellName {
				t.Errorf("expected source %q, got %q", ZNCellName, got.Source)
			}
		})
	}

	if products[2].Details.Region != "USA" {
		t.Errorf("expected swap region USA, got %q", products[2].Details.Region)
	}
}
