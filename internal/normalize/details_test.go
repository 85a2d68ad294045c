package normalize

import (
	"errors"
	"testing"

	"pricelist/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		details     model.ProductDetails
		code        string
		description string
	}{
		{
			name:        "Seminovo iPhone",
			details:     model.ProductDetails{Brand: "Apple", Model: "iPhone 11", Storage: "64GB", Color: "Preto", Condition: "Seminovo"},
			code:        "apple-11-64gb-black-used",
			description: "Apple iPhone 11 64GB Preto Seminovo",
		},
		{
			name:        "Missing brand and bare storage",
			details:     model.ProductDetails{Model: "iPhone 15 Pro Max", Storage: "256", Color: "Titânio Natural"},
			code:        "unknown-15-pro-max-256gb-natural-new",
			description: "iPhone 15 Pro Max 256 Titânio Natural",
		},
		{
			name:    "Letter model",
			details: model.ProductDetails{Brand: "Apple", Model: "iPhone XR", Storage: "128GB", Color: "Red"},
			code:    "apple-xr-128gb-red-new",
		},
		{
			name:    "MacBook passes through",
			details: model.ProductDetails{Brand: "Apple", Model: "MacBook Air M2", Storage: "256GB", Color: "Space Gray"},
			code:    "apple-macbook-air-m2-256gb-gray-new",
		},
		{
			name:    "Empty color collapses hyphens",
			details: model.ProductDetails{Brand: "Apple", Model: "iPhone 13", Storage: "128GB"},
			code:    "apple-13-128gb-new",
		},
		{
			name:    "Accents stripped",
			details: model.ProductDetails{Brand: "Apple", Model: "Apple Watch Série 9", Color: "Meia-noite"},
			code:    "apple-apple-watch-serie-9-black-new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.details)
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if got.Code != tt.code {
				t.Errorf("expected code %q, got %q", tt.code, got.Code)
			}
			if tt.description != "" && got.Description != tt.description {
				t.Errorf("expected description %q, got %q", tt.description, got.Description)
			}
		})
	}
}

func TestNormalizeSameProduct(t *testing.T) {
	pairs := []struct {
		name string
		a, b model.ProductDetails
	}{
		{
			name: "Portuguese and English color",
			a:    model.ProductDetails{Brand: "Apple", Model: "iPhone 13", Storage: "128GB", Color: "Preto"},
			b:    model.ProductDetails{Brand: "APPLE", Model: "IPHONE 13", Storage: "128 GB", Color: "BLACK"},
		},
		{
			name: "Usado and Seminovo",
			a:    model.ProductDetails{Brand: "Apple", Model: "iPhone 12", Storage: "64GB", Color: "Azul", Condition: "usado"},
			b:    model.ProductDetails{Brand: "Apple", Model: "iPhone 12", Storage: "64", Color: "Blue", Condition: "Seminovo"},
		},
		{
			name: "Bare model number",
			a:    model.ProductDetails{Brand: "Apple", Model: "14 Pro", Storage: "256GB", Color: "Roxo"},
			b:    model.ProductDetails{Brand: "Apple", Model: "iPhone 14 PRO", Storage: "256GB", Color: "Purple"},
		},
		{
			name: "Emoji normalized color",
			a:    model.ProductDetails{Brand: "Apple", Model: "iPhone 15 Pro Max", Storage: "256GB", Color: NormalizeColor("⬛")},
			b:    model.ProductDetails{Brand: "Apple", Model: "IPHONE 15 PRO MAX", Storage: "256GB", Color: "PRETO"},
		},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			ka, err := Normalize(tt.a)
			if err != nil {
				t.Fatalf("Normalize(a) returned error: %v", err)
			}
			kb, err := Normalize(tt.b)
			if err != nil {
				t.Fatalf("Normalize(b) returned error: %v", err)
			}
			if ka.Code != kb.Code {
				t.Errorf("expected equal codes, got %q and %q", ka.Code, kb.Code)
			}
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := Normalize(model.ProductDetails{Brand: "Apple", Model: "   "})
	if !errors.Is(err, ErrMalformedDetails) {
		t.Errorf("expected ErrMalformedDetails, got %v", err)
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Descrição ":  "descricao",
		"PREÇO":       "preco",
		"Lilás":       "lilas",
		"  iPhone  ":  "iphone",
		"Meia-noite": "meia-noite",
	}
	for in, expected := range tests {
		if got := Fold(in); got != expected {
			t.Errorf("Fold(%q): expected %q, got %q", in, expected, got)
		}
	}
}
