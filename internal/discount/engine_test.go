package discount

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/crockshine/backend-erp/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func set(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

func seasons(keys ...model.Season) map[model.Season]struct{} {
	m := make(map[model.Season]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}

var jacket = Attributes{CategoryID: "jackets", ColorID: "red", SizeID: "s42", Season: model.SeasonWinter}

func TestRuleApplies(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want bool
	}{
		{"unrestricted rule matches everything", Rule{}, true},
		{"category in set", Rule{Categories: set("jackets", "shoes")}, true},
		{"category outside set", Rule{Categories: set("shoes")}, false},
		{"color in set", Rule{Colors: set("red")}, true},
		{"color outside set", Rule{Colors: set("blue")}, false},
		{"size in set", Rule{Sizes: set("s42")}, true},
		{"size outside set", Rule{Sizes: set("s40")}, false},
		{"season in set", Rule{Seasons: seasons(model.SeasonWinter, model.SeasonFall)}, true},
		{"season outside set", Rule{Seasons: seasons(model.SeasonSummer)}, false},
		{"all dimensions match", Rule{Categories: set("jackets"), Colors: set("red"), Sizes: set("s42"), Seasons: seasons(model.SeasonWinter)}, true},
		{"one dimension fails", Rule{Categories: set("jackets"), Colors: set("red"), Sizes: set("s40")}, false},
		{"empty map is unrestricted", Rule{Categories: map[string]struct{}{}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.Applies(jacket))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		want  decimal.Decimal
	}{
		{"no rules", nil, pct(0)},
		{"no matching rules", []Rule{{Percentage: pct(30), Colors: set("blue")}}, pct(0)},
		{"category and season stack", []Rule{
			{Percentage: pct(20), Categories: set("jackets")},
			{Percentage: pct(15), Seasons: seasons(model.SeasonWinter)},
		}, pct(35)},
		{"non matching rule ignored", []Rule{
			{Percentage: pct(20), Categories: set("jackets")},
			{Percentage: pct(50), Categories: set("shoes")},
		}, pct(20)},
		{"sum over 100 is clamped", []Rule{
			{Percentage: pct(40)},
			{Percentage: pct(40), Colors: set("red")},
			{Percentage: pct(40), Sizes: set("s42")},
		}, pct(100)},
		{"fractional percentages", []Rule{
			{Percentage: decimal.RequireFromString("12.5")},
			{Percentage: decimal.RequireFromString("7.25")},
		}, decimal.RequireFromString("19.75")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(Resolve(jacket, tt.rules)), "got %s", Resolve(jacket, tt.rules))
		})
	}
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		list, pct, want string
	}{
		{"100", "35", "65"},
		{"100", "100", "0"},
		{"100", "0", "100"},
		{"19.99", "15", "16.99"},
		{"10", "33.333", "6.67"},
		{"100", "150", "0"},
		{"0", "50", "0"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s at %s%%", tt.list, tt.pct), func(t *testing.T) {
			got := DiscountedPrice(decimal.RequireFromString(tt.list), decimal.RequireFromString(tt.pct))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestComputeScenarios(t *testing.T) {
	product := &model.Product{
		ID:         "p1",
		Price:      pct(100),
		CategoryID: "jackets",
		ColorID:    "red",
		SizeID:     "s42",
		Season:     model.SeasonWinter,
	}

	t.Run("category plus season rule", func(t *testing.T) {
		q := Compute(product, []Rule{
			{Percentage: pct(20), Categories: set("jackets")},
			{Percentage: pct(15), Seasons: seasons(model.SeasonWinter)},
		})
		assert.Equal(t, "p1", q.ProductID)
		assert.Equal(t, "35", q.Percentage.String())
		assert.Equal(t, "65.00", q.Price.StringFixed(2))
		assert.Equal(t, "100", q.ListPrice.String())
	})

	t.Run("three rules summing to 120", func(t *testing.T) {
		q := Compute(product, []Rule{
			{Percentage: pct(50)},
			{Percentage: pct(40), Categories: set("jackets")},
			{Percentage: pct(30), Colors: set("red")},
		})
		assert.Equal(t, "100", q.Percentage.String())
		assert.Equal(t, "0.00", q.Price.StringFixed(2))
	})
}

func TestStackingInvariant(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	categories := []string{"jackets", "shoes", "hats"}

	for i := 0; i < 200; i++ {
		var rules []Rule
		sum := decimal.Zero
		n := r.Intn(6)
		for j := 0; j < n; j++ {
			rule := Rule{Percentage: pct(int64(r.Intn(101)))}
			if r.Intn(2) == 0 {
				rule.Categories = set(categories[r.Intn(len(categories))])
			}
			if rule.Applies(jacket) {
				sum = sum.Add(rule.Percentage)
			}
			rules = append(rules, rule)
		}
		want := decimal.Min(pct(100), sum)

		got := Resolve(jacket, rules)
		assert.True(t, want.Equal(got), "iteration %d: want %s got %s", i, want, got)
		assert.False(t, DiscountedPrice(pct(250), got).IsNegative())
	}
}

func TestCompile(t *testing.T) {
	rule := Compile(&model.DiscountRule{
		ID:         "r1",
		Name:       "winter reds",
		Percentage: pct(10),
		Colors:     []model.ProductColor{{ID: "red"}},
		Seasons:    []model.DiscountSeason{{RuleID: "r1", Season: model.SeasonWinter}},
	})

	assert.Nil(t, rule.Categories)
	assert.Nil(t, rule.Sizes)
	assert.Contains(t, rule.Colors, "red")
	assert.Contains(t, rule.Seasons, model.SeasonWinter)
	assert.True(t, rule.Applies(jacket))
	assert.False(t, rule.Applies(Attributes{ColorID: "red", Season: model.SeasonSummer}))

	applicable := Applicable(jacket, []Rule{rule, {ID: "r2", Colors: set("blue")}})
	assert.Len(t, applicable, 1)
	assert.Equal(t, "r1", applicable[0].ID)
}
