// Package discount resolves which discount rules apply to a product and
// prices the product accordingly. Resolution is pure and recomputed on every
// read.
package discount

import (
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Attributes are the product dimensions a rule can filter on
type Attributes struct {
	CategoryID string
	ColorID    string
	SizeID     string
	Season     model.Season
}

// AttributesOf extracts the filterable attributes of p
func AttributesOf(p *model.Product) Attributes {
	return Attributes{
		CategoryID: p.CategoryID,
		ColorID:    p.ColorID,
		SizeID:     p.SizeID,
		Season:     p.Season,
	}
}

// Rule is a discount rule with its filter sets indexed for lookup.
// A nil or empty set places no restriction on that dimension.
type Rule struct {
	ID         string
	Name       string
	Percentage decimal.Decimal

	Categories map[string]struct{}
	Colors     map[string]struct{}
	Sizes      map[string]struct{}
	Seasons    map[model.Season]struct{}
}

// Compile indexes a persisted rule's filter sets
func Compile(r *model.DiscountRule) Rule {
	rule := Rule{
		ID:         r.ID,
		Name:       r.Name,
		Percentage: r.Percentage,
	}
	if len(r.Categories) > 0 {
		rule.Categories = make(map[string]struct{}, len(r.Categories))
		for _, c := range r.Categories {
			rule.Categories[c.ID] = struct{}{}
		}
	}
	if len(r.Colors) > 0 {
		rule.Colors = make(map[string]struct{}, len(r.Colors))
		for _, c := range r.Colors {
			rule.Colors[c.ID] = struct{}{}
		}
	}
	if len(r.Sizes) > 0 {
		rule.Sizes = make(map[string]struct{}, len(r.Sizes))
		for _, s := range r.Sizes {
			rule.Sizes[s.ID] = struct{}{}
		}
	}
	if len(r.Seasons) > 0 {
		rule.Seasons = make(map[model.Season]struct{}, len(r.Seasons))
		for _, s := range r.Seasons {
			rule.Seasons[s.Season] = struct{}{}
		}
	}
	return rule
}

// CompileAll compiles every rule in rules
func CompileAll(rules []model.DiscountRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for i := range rules {
		out = append(out, Compile(&rules[i]))
	}
	return out
}

func contains[K comparable](set map[K]struct{}, key K) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[key]
	return ok
}

// Applies reports whether the product attributes fall inside every
// restricted dimension of the rule.
func (r Rule) Applies(a Attributes) bool {
	return contains(r.Categories, a.CategoryID) &&
		contains(r.Colors, a.ColorID) &&
		contains(r.Sizes, a.SizeID) &&
		contains(r.Seasons, a.Season)
}

// Applicable returns the rules that apply to a, in input order
func Applicable(a Attributes, rules []Rule) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Applies(a) {
			out = append(out, r)
		}
	}
	return out
}

// Resolve sums the percentages of every applicable rule and clamps the total
// to [0, 100].
func Resolve(a Attributes, rules []Rule) decimal.Decimal {
	total := zero
	for _, r := range rules {
		if r.Applies(a) {
			total = total.Add(r.Percentage)
		}
	}
	return clampPercentage(total)
}

func clampPercentage(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(zero) {
		return zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// DiscountedPrice applies percentage to listPrice, never going below zero,
// rounded to cents.
func DiscountedPrice(listPrice, percentage decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(clampPercentage(percentage)).Div(hundred)
	price := listPrice.Mul(factor)
	if price.LessThan(zero) {
		price = zero
	}
	return price.Round(2)
}

// Quote is a product's price after discounts
type Quote struct {
	ProductID  string          `json:"product_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Price      decimal.Decimal `json:"price"`
	ListPrice  decimal.Decimal `json:"list_price"`
}

// Compute prices p against rules
func Compute(p *model.Product, rules []Rule) Quote {
	pct := Resolve(AttributesOf(p), rules)
	return Quote{
		ProductID:  p.ID,
		Percentage: pct,
		Price:      DiscountedPrice(p.Price, pct),
		ListPrice:  p.Price,
	}
}
