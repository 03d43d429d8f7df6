// Package catalog manages products and their reference data, and serves
// the discounted product search.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/model"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Store is the persistence the catalog needs
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateCategory(ctx context.Context, c *model.ProductCategory) error
	ListCategories(ctx context.Context) ([]model.ProductCategory, error)
	FindCategories(ctx context.Context, ids []string) ([]model.ProductCategory, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateColor(ctx context.Context, c *model.ProductColor) error
	ListColors(ctx context.Context) ([]model.ProductColor, error)
	FindColors(ctx context.Context, ids []string) ([]model.ProductColor, error)
	DeleteColor(ctx context.Context, id string) error

	CreateSize(ctx context.Context, s *model.ProductSize) error
	ListSizes(ctx context.Context) ([]model.ProductSize, error)
	FindSizes(ctx context.Context, ids []string) ([]model.ProductSize, error)
	DeleteSizeByValue(ctx context.Context, value int) error

	CreateProduct(ctx context.Context, p *model.Product) error
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, changes map[string]interface{}) error
	DeleteProduct(ctx context.Context, id string) error
	SearchProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error)
}

// RuleSource supplies the current discount rules
type RuleSource interface {
	Rules(ctx context.Context) ([]discount.Rule, error)
}

// Service implements catalog operations
type Service struct {
	store Store
	rules RuleSource
}

// NewService creates a catalog service
func NewService(store Store, rules RuleSource) *Service {
	return &Service{store: store, rules: rules}
}

// ProductInput describes a new product
type ProductInput struct {
	Name       string
	SizeID     string
	Price      decimal.Decimal
	Season     string
	ColorID    string
	CategoryID string
}

// ProductPatch holds the fields to change; nil fields are kept
type ProductPatch struct {
	Name       *string
	SizeID     *string
	Price      *decimal.Decimal
	Season     *string
	ColorID    *string
	CategoryID *string
}

// ProductView is a product as shown in the catalog, with discounts applied
type ProductView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	SizeID         string          `json:"size_id"`
	Size           int             `json:"size"`
	Price          decimal.Decimal `json:"price"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	Discount       decimal.Decimal `json:"discount"`
	Season         model.Season    `json:"season"`
	ColorID        string          `json:"color_id"`
	ColorName      string          `json:"color_name"`
	CategoryID     string          `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	AvailableCount int             `json:"available_count"`
}

// SearchQuery is an unvalidated catalog search
type SearchQuery struct {
	Search      string
	CategoryIDs []string
	ColorIDs    []string
	SizeIDs     []string
	Sizes       []int
	Seasons     []string
	Offset      int
	Limit       int
}

// SearchResult is one page of product views
type SearchResult struct {
	Items  []ProductView `json:"items"`
	Total  int64         `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

// FilterOptions lists the values a search can filter on
type FilterOptions struct {
	Categories []model.ProductCategory `json:"categories"`
	Colors     []model.ProductColor    `json:"colors"`
	Sizes      []int                   `json:"sizes"`
	Seasons    []model.Season          `json:"seasons"`
}

func parseSeason(raw string) (model.Season, error) {
	season, ok := model.ParseSeason(raw)
	if !ok {
		return "", apperr.Validation("unknown season %q, expected one of FALL, WINTER, SPRING, SUMMER", raw)
	}
	return season, nil
}

func (s *Service) checkRefs(ctx context.Context, sizeID, colorID, categoryID string) error {
	if sizeID != "" {
		found, err := s.store.FindSizes(ctx, []string{sizeID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apperr.NotFound("size", sizeID)
		}
	}
	if colorID != "" {
		found, err := s.store.FindColors(ctx, []string{colorID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apperr.NotFound("color", colorID)
		}
	}
	if categoryID != "" {
		found, err := s.store.FindCategories(ctx, []string{categoryID})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apperr.NotFound("category", categoryID)
		}
	}
	return nil
}

// CreateProduct validates and stores a product
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if in.Price.IsNegative() {
		return nil, apperr.Validation("product price must not be negative")
	}
	if in.SizeID == "" || in.ColorID == "" || in.CategoryID == "" {
		return nil, apperr.Validation("size, color and category are required")
	}
	season, err := parseSeason(in.Season)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:       name,
		SizeID:     in.SizeID,
		Price:      in.Price.Round(2),
		Season:     season,
		ColorID:    in.ColorID,
		CategoryID: in.CategoryID,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, in.SizeID, in.ColorID, in.CategoryID); err != nil {
			return err
		}
		return s.store.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns a product with its discount applied
func (s *Service) GetProduct(ctx context.Context, id string) (*ProductView, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}
	view := toView(product, rules)
	return &view, nil
}

// UpdateProduct applies patch to a product
func (s *Service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*model.Product, error) {
	changes := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Validation("product name must not be blank")
		}
		changes["name"] = name
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, apperr.Validation("product price must not be negative")
		}
		changes["price"] = patch.Price.Round(2)
	}
	if patch.Season != nil {
		season, err := parseSeason(*patch.Season)
		if err != nil {
			return nil, err
		}
		changes["season"] = season
	}
	var sizeID, colorID, categoryID string
	if patch.SizeID != nil {
		sizeID = *patch.SizeID
		changes["size_id"] = sizeID
	}
	if patch.ColorID != nil {
		colorID = *patch.ColorID
		changes["color_id"] = colorID
	}
	if patch.CategoryID != nil {
		categoryID = *patch.CategoryID
		changes["category_id"] = categoryID
	}

	var product *model.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, sizeID, colorID, categoryID); err != nil {
			return err
		}
		if len(changes) > 0 {
			if err := s.store.UpdateProduct(ctx, id, changes); err != nil {
				return err
			}
		}
		var err error
		product, err = s.store.GetProduct(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product with its inventory
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// Search returns discounted product views matching q
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Offset < 0 {
		return nil, apperr.Validation("offset must not be negative")
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.Limit < 1 || q.Limit > maxLimit {
		return nil, apperr.Validation("limit must be between 1 and %d", maxLimit)
	}

	filter := model.ProductFilter{
		Search:      strings.TrimSpace(q.Search),
		CategoryIDs: q.CategoryIDs,
		ColorIDs:    q.ColorIDs,
		SizeIDs:     q.SizeIDs,
		SizeValues:  q.Sizes,
		Offset:      q.Offset,
		Limit:       q.Limit,
	}
	for _, raw := range q.Seasons {
		season, err := parseSeason(raw)
		if err != nil {
			return nil, err
		}
		filter.Seasons = append(filter.Seasons, season)
	}

	products, total, err := s.store.SearchProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.Rules(ctx)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{Items: make([]ProductView, 0, len(products)), Total: total, Offset: q.Offset, Limit: q.Limit}
	for i := range products {
		result.Items = append(result.Items, toView(&products[i], rules))
	}
	return result, nil
}

func toView(p *model.Product, rules []discount.Rule) ProductView {
	quote := discount.Compute(p, rules)
	view := ProductView{
		ID:            p.ID,
		Name:          p.Name,
		SizeID:        p.SizeID,
		Price:         quote.Price,
		OriginalPrice: quote.ListPrice.Round(2),
		Discount:      quote.Percentage.Round(2),
		Season:        p.Season,
		ColorID:       p.ColorID,
		CategoryID:    p.CategoryID,
	}
	if p.Size != nil {
		view.Size = p.Size.Value
	}
	if p.Color != nil {
		view.ColorName = p.Color.Name
	}
	if p.Category != nil {
		view.CategoryName = p.Category.Name
	}
	if p.Inventory != nil {
		view.AvailableCount = p.Inventory.RestCount
	}
	return view
}

// FilterOptions lists every category, color, size value and season
func (s *Service) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	colors, err := s.store.ListColors(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := s.store.ListSizes(ctx)
	if err != nil {
		return nil, err
	}

	values := make([]int, 0, len(sizes))
	for _, size := range sizes {
		values = append(values, size.Value)
	}
	sort.Ints(values)

	return &FilterOptions{
		Categories: categories,
		Colors:     colors,
		Sizes:      values,
		Seasons:    model.Seasons,
	}, nil
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("%s name is required", kind)
	}
	return name, nil
}

// CreateCategory adds a category; names are unique ignoring case
func (s *Service) CreateCategory(ctx context.Context, name string) (*model.ProductCategory, error) {
	name, err := cleanName("category", name)
	if err != nil {
		return nil, err
	}
	c := &model.ProductCategory{Name: name}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category and every product in it
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.DeleteCategory(ctx, id)
}

// CreateColor adds a color; names are unique ignoring case
func (s *Service) CreateColor(ctx context.Context, name string) (*model.ProductColor, error) {
	name, err := cleanName("color", name)
	if err != nil {
		return nil, err
	}
	c := &model.ProductColor{Name: name}
	if err := s.store.CreateColor(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteColor removes a color and every product in it
func (s *Service) DeleteColor(ctx context.Context, id string) error {
	return s.store.DeleteColor(ctx, id)
}

// CreateSize adds a size with a unique positive value
func (s *Service) CreateSize(ctx context.Context, value int) (*model.ProductSize, error) {
	if value <= 0 {
		return nil, apperr.Validation("size value must be positive, got %d", value)
	}
	size := &model.ProductSize{Value: value}
	if err := s.store.CreateSize(ctx, size); err != nil {
		return nil, err
	}
	return size, nil
}

// DeleteSize removes the size with value and every product in it
func (s *Service) DeleteSize(ctx context.Context, value int) error {
	return s.store.DeleteSizeByValue(ctx, value)
}
