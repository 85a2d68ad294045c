package aggregate

import (
	"sort"

	"pricelist/internal/model"
)

// Merge folds normalized products into existing, keyed by product code.
// Products must already carry their normalized code. existing is modified
// in place and returned; a nil map is allocated.
//
// A source appears at most once per code: a repeated source updates its
// price. AllPrices stays sorted ascending and BestPrice/BestSource always
// reflect its first entry. Equal prices keep the first-seen source ahead.
func Merge(existing map[string]*model.ComparisonResult, products []model.RawProduct) map[string]*model.ComparisonResult {
	if existing == nil {
		existing = make(map[string]*model.ComparisonResult)
	}
	for _, p := range products {
		res, ok := existing[p.Code]
		if !ok {
			existing[p.Code] = &model.ComparisonResult{
				Code:        p.Code,
				Description: p.Description,
				BestPrice:   p.Price,
				BestSource:  p.Source,
				AllPrices:   []model.PriceEntry{{Source: p.Source, Price: p.Price}},
				Details:     p.Details,
			}
			continue
		}
		upsertPrice(res, p)
	}
	return existing
}

func upsertPrice(res *model.ComparisonResult, p model.RawProduct) {
	found := false
	for i := range res.AllPrices {
		if res.AllPrices[i].Source == p.Source {
			if res.AllPrices[i].Price == p.Price {
				return
			}
			res.AllPrices[i].Price = p.Price
			found = true
			break
		}
	}
	if !found {
		res.AllPrices = append(res.AllPrices, model.PriceEntry{Source: p.Source, Price: p.Price})
	}
	sort.SliceStable(res.AllPrices, func(i, j int) bool {
		return res.AllPrices[i].Price < res.AllPrices[j].Price
	})
	res.BestPrice = res.AllPrices[0].Price
	res.BestSource = res.AllPrices[0].Source
	if res.Details == nil {
		res.Details = p.Details
	}
}

// Sorted lists results by description, then code.
func Sorted(results map[string]*model.ComparisonResult) []model.ComparisonResult {
	out := make([]model.ComparisonResult, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Description != out[j].Description {
			return out[i].Description < out[j].Description
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// FromList indexes a result list by code, for merging into a stored run.
func FromList(results []model.ComparisonResult) map[string]*model.ComparisonResult {
	m := make(map[string]*model.ComparisonResult, len(results))
	for i := range results {
		r := results[i]
		r.AllPrices = append([]model.PriceEntry(nil), r.AllPrices...)
		m[r.Code] = &r
	}
	return m
}
