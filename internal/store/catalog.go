package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/prometheus"
)

// CreateCategory inserts a category. Names are unique ignoring case.
func (s *Store) CreateCategory(ctx context.Context, c *model.ProductCategory) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if _, err := s.FindCategoryByName(ctx, c.Name); err == nil {
		return apperr.Conflict("category", "category %q already exists", c.Name)
	} else if !isNotFound(err) {
		return err
	}
	return conflict(s.conn(ctx).Create(c).Error, "category", "category %q already exists", c.Name)
}

// FindCategoryByName looks a category up case-insensitively
func (s *Store) FindCategoryByName(ctx context.Context, name string) (*model.ProductCategory, error) {
	var c model.ProductCategory
	err := s.conn(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&c).Error
	if err != nil {
		return nil, notFound(err, "category", name)
	}
	return &c, nil
}

// ListCategories returns all categories by name
func (s *Store) ListCategories(ctx context.Context) ([]model.ProductCategory, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.ProductCategory
	if err := s.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, classify("list categories", err)
	}
	return out, nil
}

// FindCategories returns the categories among ids that exist
func (s *Store) FindCategories(ctx context.Context, ids []string) ([]model.ProductCategory, error) {
	var out []model.ProductCategory
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, classify("find categories", err)
	}
	return out, nil
}

// DeleteCategory removes a category; its products cascade
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return requireAffected(s.conn(ctx).Delete(&model.ProductCategory{}, "id = ?", id), "category", id)
}

// CreateColor inserts a color. Names are unique ignoring case.
func (s *Store) CreateColor(ctx context.Context, c *model.ProductColor) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if _, err := s.FindColorByName(ctx, c.Name); err == nil {
		return apperr.Conflict("color", "color %q already exists", c.Name)
	} else if !isNotFound(err) {
		return err
	}
	return conflict(s.conn(ctx).Create(c).Error, "color", "color %q already exists", c.Name)
}

// FindColorByName looks a color up case-insensitively
func (s *Store) FindColorByName(ctx context.Context, name string) (*model.ProductColor, error) {
	var c model.ProductColor
	err := s.conn(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&c).Error
	if err != nil {
		return nil, notFound(err, "color", name)
	}
	return &c, nil
}

// ListColors returns all colors by name
func (s *Store) ListColors(ctx context.Context) ([]model.ProductColor, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.ProductColor
	if err := s.conn(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, classify("list colors", err)
	}
	return out, nil
}

// FindColors returns the colors among ids that exist
func (s *Store) FindColors(ctx context.Context, ids []string) ([]model.ProductColor, error) {
	var out []model.ProductColor
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, classify("find colors", err)
	}
	return out, nil
}

// DeleteColor removes a color; its products cascade
func (s *Store) DeleteColor(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return requireAffected(s.conn(ctx).Delete(&model.ProductColor{}, "id = ?", id), "color", id)
}

// CreateSize inserts a size with a unique value
func (s *Store) CreateSize(ctx context.Context, size *model.ProductSize) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	return conflict(s.conn(ctx).Create(size).Error, "size", "size %d already exists", size.Value)
}

// ListSizes returns all sizes ordered by value
func (s *Store) ListSizes(ctx context.Context) ([]model.ProductSize, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var out []model.ProductSize
	if err := s.conn(ctx).Order("value").Find(&out).Error; err != nil {
		return nil, classify("list sizes", err)
	}
	return out, nil
}

// FindSizes returns the sizes among ids that exist
func (s *Store) FindSizes(ctx context.Context, ids []string) ([]model.ProductSize, error) {
	var out []model.ProductSize
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, classify("find sizes", err)
	}
	return out, nil
}

// DeleteSizeByValue removes the size with value; its products cascade
func (s *Store) DeleteSizeByValue(ctx context.Context, value int) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	res := s.conn(ctx).Delete(&model.ProductSize{}, "value = ?", value)
	return requireAffected(res, "size", strconv.Itoa(value))
}

// CreateProduct inserts a product
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.conn(ctx).Omit("Size", "Color", "Category", "Inventory").Create(p).Error; err != nil {
		return classify("create product", err)
	}
	return nil
}

func withProductRefs(db *gorm.DB) *gorm.DB {
	return db.Preload("Size").Preload("Color").Preload("Category").Preload("Inventory")
}

// GetProduct loads a product with its references and inventory
func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	var p model.Product
	if err := withProductRefs(s.conn(ctx)).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "product", id)
	}
	return &p, nil
}

// UpdateProduct applies column changes to a product
func (s *Store) UpdateProduct(ctx context.Context, id string, changes map[string]interface{}) error {
	defer prometheus.TrackDBOperation("update")(time.Now())

	res := s.conn(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return classify("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}

// DeleteProduct removes a product; inventory and line items cascade
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())
	return requireAffected(s.conn(ctx).Delete(&model.Product{}, "id = ?", id), "product", id)
}

// SearchProducts returns one page of products matching f and the total match count
func (s *Store) SearchProducts(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	defer prometheus.TrackDBOperation("select")(time.Now())

	q := s.conn(ctx).Model(&model.Product{})
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if len(f.CategoryIDs) > 0 {
		q = q.Where("products.category_id IN ?", f.CategoryIDs)
	}
	if len(f.ColorIDs) > 0 {
		q = q.Where("products.color_id IN ?", f.ColorIDs)
	}
	if len(f.SizeIDs) > 0 {
		q = q.Where("products.size_id IN ?", f.SizeIDs)
	}
	if len(f.SizeValues) > 0 {
		q = q.Where("products.size_id IN (?)", s.conn(ctx).Model(&model.ProductSize{}).Select("id").Where("value IN ?", f.SizeValues))
	}
	if len(f.Seasons) > 0 {
		q = q.Where("products.season IN ?", f.Seasons)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, classify("count products", err)
	}

	offset, limit := pageBounds(f.Offset, f.Limit)
	var out []model.Product
	err := withProductRefs(q).Order("products.name").Order("products.id").Offset(offset).Limit(limit).Find(&out).Error
	if err != nil {
		return nil, 0, classify("search products", err)
	}
	return out, total, nil
}

func isNotFound(err error) bool {
	appErr, ok := apperr.As(err)
	return ok && appErr.Kind == apperr.ErrNotFound
}
