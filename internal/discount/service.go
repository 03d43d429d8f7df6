package discount

import (
	"context"
	"strings"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/shopspring/decimal"
)

// Store is the persistence the discount service needs
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListDiscountRules(ctx context.Context) ([]model.DiscountRule, error)
	CreateDiscountRule(ctx context.Context, rule *model.DiscountRule) error
	DeleteDiscountRule(ctx context.Context, id string) error
	FindCategories(ctx context.Context, ids []string) ([]model.ProductCategory, error)
	FindColors(ctx context.Context, ids []string) ([]model.ProductColor, error)
	FindSizes(ctx context.Context, ids []string) ([]model.ProductSize, error)
}

// RuleInput describes a rule to create. Empty filter lists leave the
// dimension unrestricted.
type RuleInput struct {
	Name        string
	Percentage  decimal.Decimal
	CategoryIDs []string
	ColorIDs    []string
	SizeIDs     []string
	Seasons     []string
}

// Service administers rules and quotes products
type Service struct {
	store Store
}

// NewService creates a discount service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Rules loads and compiles the current rule set
func (s *Service) Rules(ctx context.Context) ([]Rule, error) {
	rules, err := s.store.ListDiscountRules(ctx)
	if err != nil {
		return nil, err
	}
	return CompileAll(rules), nil
}

// Quote prices one product against the current rule set
func (s *Service) Quote(ctx context.Context, productID string) (Quote, error) {
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return Quote{}, err
	}
	rules, err := s.Rules(ctx)
	if err != nil {
		return Quote{}, err
	}
	return Compute(product, rules), nil
}

// ListRules returns every rule with its filters loaded
func (s *Service) ListRules(ctx context.Context) ([]model.DiscountRule, error) {
	return s.store.ListDiscountRules(ctx)
}

// CreateRule validates in and stores a new rule
func (s *Service) CreateRule(ctx context.Context, in RuleInput) (*model.DiscountRule, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("discount name is required")
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred) {
		return nil, apperr.Validation("discount percentage must be between 0 and 100, got %s", in.Percentage)
	}

	rule := &model.DiscountRule{
		Name:       name,
		Percentage: in.Percentage.Round(2),
	}

	for _, raw := range unique(in.Seasons) {
		season, ok := model.ParseSeason(raw)
		if !ok {
			return nil, apperr.Validation("unknown season %q", raw)
		}
		rule.Seasons = append(rule.Seasons, model.DiscountSeason{Season: season})
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if ids := unique(in.CategoryIDs); len(ids) > 0 {
			if rule.Categories, err = s.store.FindCategories(ctx, ids); err != nil {
				return err
			}
			if err := requireAll("category", ids, rule.Categories, func(c model.ProductCategory) string { return c.ID }); err != nil {
				return err
			}
		}
		if ids := unique(in.ColorIDs); len(ids) > 0 {
			if rule.Colors, err = s.store.FindColors(ctx, ids); err != nil {
				return err
			}
			if err := requireAll("color", ids, rule.Colors, func(c model.ProductColor) string { return c.ID }); err != nil {
				return err
			}
		}
		if ids := unique(in.SizeIDs); len(ids) > 0 {
			if rule.Sizes, err = s.store.FindSizes(ctx, ids); err != nil {
				return err
			}
			if err := requireAll("size", ids, rule.Sizes, func(s model.ProductSize) string { return s.ID }); err != nil {
				return err
			}
		}
		return s.store.CreateDiscountRule(ctx, rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule removes a rule and its filter links
func (s *Service) DeleteRule(ctx context.Context, id string) error {
	return s.store.DeleteDiscountRule(ctx, id)
}

// unique drops blanks and repeats, keeping first-seen order
func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func requireAll[T any](entity string, want []string, found []T, id func(T) string) error {
	have := make(map[string]struct{}, len(found))
	for _, f := range found {
		have[id(f)] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return apperr.NotFound(entity, w)
		}
	}
	return nil
}
