package discount

import (
	"context"
	"testing"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	products   map[string]*model.Product
	rules      []model.DiscountRule
	categories []model.ProductCategory
	colors     []model.ProductColor
	sizes      []model.ProductSize
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) GetProduct(_ context.Context, id string) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product", id)
	}
	return p, nil
}

func (f *fakeStore) ListDiscountRules(context.Context) ([]model.DiscountRule, error) {
	return f.rules, nil
}

func (f *fakeStore) CreateDiscountRule(_ context.Context, rule *model.DiscountRule) error {
	rule.ID = "rule-" + rule.Name
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeStore) DeleteDiscountRule(_ context.Context, id string) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("discount", id)
}

func pick[T any](all []T, ids []string, id func(T) string) []T {
	var out []T
	for _, want := range ids {
		for _, v := range all {
			if id(v) == want {
				out = append(out, v)
			}
		}
	}
	return out
}

func (f *fakeStore) FindCategories(_ context.Context, ids []string) ([]model.ProductCategory, error) {
	return pick(f.categories, ids, func(c model.ProductCategory) string { return c.ID }), nil
}

func (f *fakeStore) FindColors(_ context.Context, ids []string) ([]model.ProductColor, error) {
	return pick(f.colors, ids, func(c model.ProductColor) string { return c.ID }), nil
}

func (f *fakeStore) FindSizes(_ context.Context, ids []string) ([]model.ProductSize, error) {
	return pick(f.sizes, ids, func(s model.ProductSize) string { return s.ID }), nil
}

func newFake() *fakeStore {
	return &fakeStore{
		products: map[string]*model.Product{
			"p1": {ID: "p1", Price: decimal.NewFromInt(100), CategoryID: "jackets", ColorID: "red", SizeID: "s42", Season: model.SeasonWinter},
		},
		categories: []model.ProductCategory{{ID: "jackets", Name: "Jackets"}},
		colors:     []model.ProductColor{{ID: "red", Name: "Red"}},
		sizes:      []model.ProductSize{{ID: "s42", Value: 42}},
	}
}

func TestCreateRuleAndQuote(t *testing.T) {
	ctx := context.Background()
	store := newFake()
	svc := NewService(store)

	_, err := svc.CreateRule(ctx, RuleInput{Name: "jackets", Percentage: decimal.NewFromInt(20), CategoryIDs: []string{"jackets", "jackets"}})
	require.NoError(t, err)
	rule, err := svc.CreateRule(ctx, RuleInput{Name: "winter", Percentage: decimal.NewFromInt(15), Seasons: []string{"winter"}})
	require.NoError(t, err)
	assert.Equal(t, model.SeasonWinter, rule.Seasons[0].Season)

	q, err := svc.Quote(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "35", q.Percentage.String())
	assert.Equal(t, "65.00", q.Price.StringFixed(2))

	require.NoError(t, svc.DeleteRule(ctx, "rule-winter"))
	q, err = svc.Quote(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "80.00", q.Price.StringFixed(2))
}

func TestCreateRuleValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RuleInput
		kind error
	}{
		{"blank name", RuleInput{Name: "  ", Percentage: decimal.NewFromInt(5)}, apperr.ErrValidation},
		{"negative percentage", RuleInput{Name: "x", Percentage: decimal.NewFromInt(-1)}, apperr.ErrValidation},
		{"percentage over 100", RuleInput{Name: "x", Percentage: decimal.NewFromInt(101)}, apperr.ErrValidation},
		{"unknown season", RuleInput{Name: "x", Percentage: decimal.NewFromInt(5), Seasons: []string{"MONSOON"}}, apperr.ErrValidation},
		{"unknown category", RuleInput{Name: "x", Percentage: decimal.NewFromInt(5), CategoryIDs: []string{"hats"}}, apperr.ErrNotFound},
		{"unknown color", RuleInput{Name: "x", Percentage: decimal.NewFromInt(5), ColorIDs: []string{"red", "blue"}}, apperr.ErrNotFound},
		{"unknown size", RuleInput{Name: "x", Percentage: decimal.NewFromInt(5), SizeIDs: []string{"s1"}}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFake()
			_, err := NewService(store).CreateRule(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.kind)
			assert.Empty(t, store.rules)
		})
	}
}

func TestQuoteMissingProduct(t *testing.T) {
	_, err := NewService(newFake()).Quote(context.Background(), "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
