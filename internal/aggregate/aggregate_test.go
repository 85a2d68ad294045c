package aggregate

import (
	"reflect"
	"testing"

	"pricelist/internal/model"
)

func product(code, source string, price float64) model.RawProduct {
	return model.RawProduct{Code: code, Description: code, Price: price, Source: source}
}

func TestMergeTwoSuppliers(t *testing.T) {
	res := Merge(nil, []model.RawProduct{product("apple-13-128gb-black-new", "ZN Cell", 1200.00)})
	res = Merge(res, []model.RawProduct{product("apple-13-128gb-black-new", "Made In Store", 999.00)})

	if len(res) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res))
	}
	got := res["apple-13-128gb-black-new"]
	if got.BestPrice != 999.00 {
		t.Errorf("expected best price 999.00, got %v", got.BestPrice)
	}
	if got.BestSource != "Made In Store" {
		t.Errorf("expected best source Made In Store, got %q", got.BestSource)
	}
	if len(got.AllPrices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(got.AllPrices))
	}
	if got.AllPrices[0].Price > got.AllPrices[1].Price {
		t.Errorf("expected prices sorted ascending, got %+v", got.AllPrices)
	}
}

func TestMergeIdempotent(t *testing.T) {
	batch := []model.RawProduct{
		product("a", "s1", 10),
		product("a", "s2", 8),
		product("b", "s1", 5),
	}
	once := Merge(nil, batch)
	twice := Merge(Merge(nil, batch), batch)

	if !reflect.DeepEqual(Sorted(once), Sorted(twice)) {
		t.Errorf("expected same results, got %+v and %+v", Sorted(once), Sorted(twice))
	}
	if n := len(twice["a"].AllPrices); n != 2 {
		t.Errorf("expected 2 price entries, got %d", n)
	}
}

func TestMergeSameSourceUpdatesPrice(t *testing.T) {
	res := Merge(nil, []model.RawProduct{
		product("a", "s1", 10),
		product("a", "s2", 12),
		product("a", "s1", 15),
	})
	got := res["a"]
	expected := []model.PriceEntry{{Source: "s2", Price: 12}, {Source: "s1", Price: 15}}
	if !reflect.DeepEqual(got.AllPrices, expected) {
		t.Errorf("expected %+v, got %+v", expected, got.AllPrices)
	}
	if got.BestPrice != 12 || got.BestSource != "s2" {
		t.Errorf("expected best s2 at 12, got %s at %v", got.BestSource, got.BestPrice)
	}
}

func TestMergeTieKeepsFirstSource(t *testing.T) {
	res := Merge(nil, []model.RawProduct{
		product("a", "first", 100),
		product("a", "second", 100),
	})
	if got := res["a"].BestSource; got != "first" {
		t.Errorf("expected first, got %q", got)
	}
}

func TestSortedAndFromList(t *testing.T) {
	res := Merge(nil, []model.RawProduct{
		{Code: "b", Description: "iPhone 13", Price: 3, Source: "x"},
		{Code: "a", Description: "AirPods", Price: 1, Source: "x"},
	})
	list := Sorted(res)
	if list[0].Code != "a" || list[1].Code != "b" {
		t.Fatalf("expected sorted by description, got %+v", list)
	}

	back := Merge(FromList(list), []model.RawProduct{{Code: "a", Price: 0.5, Source: "y"}})
	if back["a"].BestSource != "y" {
		t.Errorf("expected y to become best, got %q", back["a"].BestSource)
	}
	if len(list[0].AllPrices) != 1 {
		t.Errorf("expected original list untouched, got %+v", list[0].AllPrices)
	}
}
