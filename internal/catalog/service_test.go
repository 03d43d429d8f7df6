package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/crockshine/backend-erp/internal/apperr"
	"github.com/crockshine/backend-erp/internal/discount"
	"github.com/crockshine/backend-erp/internal/model"
	"github.com/crockshine/backend-erp/internal/store"
)

type env struct {
	store     *store.Store
	discounts *discount.Service
	catalog   *Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	s := store.New(db)
	d := discount.NewService(s)
	return &env{store: s, discounts: d, catalog: NewService(s, d)}
}

type refs struct {
	jackets, hats *model.ProductCategory
	red, blue     *model.ProductColor
	s40, s42      *model.ProductSize
}

func (e *env) seedRefs(t *testing.T) refs {
	t.Helper()
	ctx := context.Background()
	var r refs
	var err error

	r.jackets, err = e.catalog.CreateCategory(ctx, " Jackets ")
	require.NoError(t, err)
	r.hats, err = e.catalog.CreateCategory(ctx, "Hats")
	require.NoError(t, err)
	r.red, err = e.catalog.CreateColor(ctx, "Red")
	require.NoError(t, err)
	r.blue, err = e.catalog.CreateColor(ctx, "Blue")
	require.NoError(t, err)
	r.s42, err = e.catalog.CreateSize(ctx, 42)
	require.NoError(t, err)
	r.s40, err = e.catalog.CreateSize(ctx, 40)
	require.NoError(t, err)
	return r
}

func TestReferenceData(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seedRefs(t)

	assert.Equal(t, "Jackets", r.jackets.Name)

	_, err := e.catalog.CreateCategory(ctx, "JACKETS")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = e.catalog.CreateColor(ctx, "red")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = e.catalog.CreateSize(ctx, 42)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = e.catalog.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = e.catalog.CreateSize(ctx, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	opts, err := e.catalog.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{40, 42}, opts.Sizes)
	assert.Len(t, opts.Categories, 2)
	assert.Len(t, opts.Colors, 2)
	assert.Equal(t, model.Seasons, opts.Seasons)

	require.NoError(t, e.catalog.DeleteSize(ctx, 40))
	assert.ErrorIs(t, e.catalog.DeleteSize(ctx, 40), apperr.ErrNotFound)
	assert.ErrorIs(t, e.catalog.DeleteColor(ctx, "missing"), apperr.ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	e := newEnv(t)
	r := e.seedRefs(t)
	valid := ProductInput{Name: "Parka", SizeID: r.s42.ID, Price: decimal.NewFromInt(100), Season: "winter", ColorID: r.red.ID, CategoryID: r.jackets.ID}

	tests := []struct {
		name   string
		mutate func(in *ProductInput)
		kind   error
	}{
		{"blank name", func(in *ProductInput) { in.Name = "" }, apperr.ErrValidation},
		{"negative price", func(in *ProductInput) { in.Price = decimal.NewFromInt(-5) }, apperr.ErrValidation},
		{"bad season", func(in *ProductInput) { in.Season = "AUTUMN" }, apperr.ErrValidation},
		{"missing color reference", func(in *ProductInput) { in.ColorID = "" }, apperr.ErrValidation},
		{"unknown size", func(in *ProductInput) { in.SizeID = "nope" }, apperr.ErrNotFound},
		{"unknown color", func(in *ProductInput) { in.ColorID = "nope" }, apperr.ErrNotFound},
		{"unknown category", func(in *ProductInput) { in.CategoryID = "nope" }, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := e.catalog.CreateProduct(context.Background(), in)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	p, err := e.catalog.CreateProduct(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, model.SeasonWinter, p.Season)
}

func TestSearchAppliesDiscounts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seedRefs(t)

	parka, err := e.catalog.CreateProduct(ctx, ProductInput{Name: "Parka", SizeID: r.s42.ID, Price: decimal.NewFromInt(100), Season: "WINTER", ColorID: r.red.ID, CategoryID: r.jackets.ID})
	require.NoError(t, err)
	_, err = e.catalog.CreateProduct(ctx, ProductInput{Name: "Sun Hat", SizeID: r.s40.ID, Price: decimal.NewFromInt(30), Season: "SUMMER", ColorID: r.blue.ID, CategoryID: r.hats.ID})
	require.NoError(t, err)
	require.NoError(t, e.store.IncrementInventory(ctx, parka.ID, 7))

	_, err = e.discounts.CreateRule(ctx, discount.RuleInput{Name: "jackets", Percentage: decimal.NewFromInt(20), CategoryIDs: []string{r.jackets.ID}})
	require.NoError(t, err)
	_, err = e.discounts.CreateRule(ctx, discount.RuleInput{Name: "winter", Percentage: decimal.NewFromInt(15), Seasons: []string{"WINTER"}})
	require.NoError(t, err)

	res, err := e.catalog.Search(ctx, SearchQuery{Search: "par"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	view := res.Items[0]
	assert.Equal(t, "65.00", view.Price.StringFixed(2))
	assert.Equal(t, "100", view.OriginalPrice.String())
	assert.Equal(t, "35", view.Discount.String())
	assert.Equal(t, 42, view.Size)
	assert.Equal(t, "Red", view.ColorName)
	assert.Equal(t, "Jackets", view.CategoryName)
	assert.Equal(t, 7, view.AvailableCount)

	res, err = e.catalog.Search(ctx, SearchQuery{Seasons: []string{"summer"}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Sun Hat", res.Items[0].Name)
	assert.True(t, res.Items[0].Discount.IsZero())
	assert.Zero(t, res.Items[0].AvailableCount)

	res, err = e.catalog.Search(ctx, SearchQuery{Sizes: []int{42}})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 100, res.Limit)

	for _, q := range []SearchQuery{{Offset: -1}, {Limit: 1001}, {Limit: -3}, {Seasons: []string{"MONSOON"}}} {
		_, err := e.catalog.Search(ctx, q)
		assert.ErrorIs(t, err, apperr.ErrValidation, "%+v", q)
	}

	got, err := e.catalog.GetProduct(ctx, parka.ID)
	require.NoError(t, err)
	assert.Equal(t, "65.00", got.Price.StringFixed(2))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seedRefs(t)

	p, err := e.catalog.CreateProduct(ctx, ProductInput{Name: "Parka", SizeID: r.s42.ID, Price: decimal.NewFromInt(100), Season: "WINTER", ColorID: r.red.ID, CategoryID: r.jackets.ID})
	require.NoError(t, err)

	name, season, color := "Light Parka", "fall", r.blue.ID
	price := decimal.RequireFromString("80.5")
	updated, err := e.catalog.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name, Season: &season, ColorID: &color, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Light Parka", updated.Name)
	assert.Equal(t, model.SeasonFall, updated.Season)
	assert.Equal(t, r.blue.ID, updated.ColorID)
	assert.Equal(t, "80.5", updated.Price.String())

	bogus := "nope"
	_, err = e.catalog.UpdateProduct(ctx, p.ID, ProductPatch{CategoryID: &bogus})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = e.catalog.UpdateProduct(ctx, "missing", ProductPatch{Name: &name})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	bad := "NEVER"
	_, err = e.catalog.UpdateProduct(ctx, p.ID, ProductPatch{Season: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, e.catalog.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, e.catalog.DeleteProduct(ctx, p.ID), apperr.ErrNotFound)
}

func TestDeleteCategoryRemovesProducts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := e.seedRefs(t)

	p, err := e.catalog.CreateProduct(ctx, ProductInput{Name: "Parka", SizeID: r.s42.ID, Price: decimal.NewFromInt(100), Season: "WINTER", ColorID: r.red.ID, CategoryID: r.jackets.ID})
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteCategory(ctx, r.jackets.ID))
	_, err = e.catalog.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
