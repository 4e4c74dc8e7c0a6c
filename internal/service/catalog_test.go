package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type fakeIndex struct {
	indexed map[uint]string
	removed []uint
	hits    []uint
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) RemoveProduct(_ context.Context, id uint) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uint, error) {
	return int64(len(f.hits)), f.hits, f.err
}

type fakeImages struct {
	key  string
	body []byte
}

func (f *fakeImages) Put(_ context.Context, key string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.key, f.body = key, b
	return "/uploads/" + key, nil
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

func newCatalog(t *testing.T) (*CatalogService, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	return &CatalogService{Repo: &repo.GormRepo{DB: testutil.NewDB(t)}, Events: rec}, rec
}

func TestCatalogService_Categories(t *testing.T) {
	t.Parallel()

	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, transport.CategoryRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	cat, err := svc.CreateCategory(ctx, transport.CategoryRequest{Name: strPtr("Mugs"), Description: strPtr("ceramic")})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, cat.ID, transport.CategoryRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateCategory(ctx, cat.ID, transport.CategoryRequest{Name: strPtr("Cups")})
	require.NoError(t, err)
	assert.Equal(t, "Cups", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "ceramic", *updated.Description)

	_, err = svc.UpdateCategory(ctx, 999, transport.CategoryRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	_, err = svc.GetCategory(ctx, cat.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteCategory(ctx, cat.ID), ErrNotFound)
}

func TestCatalogService_ProductLifecycle(t *testing.T) {
	t.Parallel()

	svc, rec := newCatalog(t)
	idx := &fakeIndex{indexed: map[uint]string{}}
	svc.Index = idx
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "Mug"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "Mug", CategoryID: 1, Price: decPtr("-1")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "Mug", CategoryID: 1, Stock: intPtr(-2)})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: "Mug", CategoryID: 1, Price: decPtr("9.99"), Stock: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Mug", idx.indexed[p.ID])

	_, err = svc.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := svc.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Name: strPtr("Big Mug"), Stock: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assert.Equal(t, 0, updated.Stock)
	assert.True(t, updated.Price.Equal(dec("9.99")))
	assert.Equal(t, "Big Mug", idx.indexed[p.ID])

	_, err = svc.UpdateProduct(ctx, 999, transport.PatchProductRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uint{p.ID}, idx.removed)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)

	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, rec.types())
}

func TestCatalogService_SearchFallsBackToDatabase(t *testing.T) {
	t.Parallel()

	svc, _ := newCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"Blue Mug", "Red mug", "Teapot", "100% Cotton"} {
		_, err := svc.CreateProduct(ctx, transport.CreateProductRequest{Name: name, CategoryID: 1})
		require.NoError(t, err)
	}

	_, err := svc.SearchProducts(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)

	res, err := svc.SearchProducts(ctx, "MUG", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Meta.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Blue Mug", res.Items[0].Name)
	assert.True(t, res.Meta.HasNext)

	res, err = svc.SearchProducts(ctx, "100%", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "100% Cotton", res.Items[0].Name)
}

func TestCatalogService_SearchUsesIndex(t *testing.T) {
	t.Parallel()

	svc, _ := newCatalog(t)
	ctx := context.Background()
	a := testutil.SeedProduct(t, svc.Repo.DB, "A", "1")
	b := testutil.SeedProduct(t, svc.Repo.DB, "B", "2")

	svc.Index = &fakeIndex{indexed: map[uint]string{}, hits: []uint{b.ID, 999, a.ID}}
	res, err := svc.SearchProducts(ctx, "anything", 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, b.ID, res.Items[0].ID)
	assert.Equal(t, a.ID, res.Items[1].ID)

	svc.Index = &fakeIndex{indexed: map[uint]string{}, err: errors.New("es down")}
	_, err = svc.SearchProducts(ctx, "anything", 1, 10)
	assert.ErrorIs(t, err, ErrDependency)
}

func TestCatalogService_UploadImage(t *testing.T) {
	t.Parallel()

	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, "a.png", 3, strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrConfiguration)

	store := &fakeImages{}
	svc.Images = store

	_, err = svc.UploadImage(ctx, "a.png", 0, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UploadImage(ctx, "a.png", MaxImageSize+1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrValidation)

	url, err := svc.UploadImage(ctx, "Photo.JPG", 4, bytes.NewReader([]byte("jpeg")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(store.key, "products/"))
	assert.True(t, strings.HasSuffix(store.key, ".jpg"))
	assert.Equal(t, "/uploads/"+store.key, url)
	assert.Equal(t, []byte("jpeg"), store.body)
}
