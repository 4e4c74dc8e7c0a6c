package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const MaxImageSize = 5 << 20

// ProductIndex is a full-text index over the catalog.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	RemoveProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, from, size int) (int64, []uint, error)
}

// ImageStore keeps uploaded blobs and hands back a public URL.
type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Images ImageStore
	Events events.Publisher
}

type SearchResult struct {
	Items []models.Product   `json:"items"`
	Meta  transport.PageMeta `json:"meta"`
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, dependency("list categories", err)
	}
	return cats, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	cat, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, dependency("get category", err)
	}
	return cat, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	cat := &models.Category{Name: strings.TrimSpace(*req.Name), Description: req.Description}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, dependency("create category", err)
	}
	return cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, req transport.CategoryRequest) (*models.Category, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}

	cat, err := s.Repo.UpdateCategory(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return nil, dependency("update category", err)
	}
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d", ErrNotFound, id)
		}
		return dependency("delete category", err)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, dependency("list products", err)
	}
	return items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, dependency("get product", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.CategoryID == 0 {
		return nil, fmt.Errorf("%w: name and category_id are required", ErrValidation)
	}

	p := &models.Product{
		Name:        name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be a valid number", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be a valid number", ErrValidation)
		}
		p.Stock = *req.Stock
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, dependency("create product", err)
	}

	s.reindex(ctx, *p)
	publish(ctx, s.Events, events.TopicProducts, idKey(p.ID), map[string]any{
		"type":      "product_created",
		"productID": p.ID,
		"name":      p.Name,
	})
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be a valid number", ErrValidation)
		}
		fields["price"] = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be a valid number", ErrValidation)
		}
		fields["stock"] = *req.Stock
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		if *req.CategoryID == 0 {
			return nil, fmt.Errorf("%w: category_id must be positive", ErrValidation)
		}
		fields["category_id"] = *req.CategoryID
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields provided for update", ErrValidation)
	}

	p, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, dependency("update product", err)
	}

	s.reindex(ctx, *p)
	publish(ctx, s.Events, events.TopicProducts, idKey(id), map[string]any{
		"type":      "product_updated",
		"productID": id,
		"name":      p.Name,
	})
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return dependency("delete product", err)
	}

	if s.Index != nil {
		if err := s.Index.RemoveProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_error", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, idKey(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

// SearchProducts goes to the search index when one is configured and to a
// substring match in the database otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	if size > util.MaxPageSize {
		size = util.MaxPageSize
	}
	offset, limit := util.Calculate(page, size)
	if page < 1 {
		page = 1
	}

	var (
		total int64
		items []models.Product
		err   error
	)
	if s.Index != nil {
		var ids []uint
		total, ids, err = s.Index.Search(ctx, q, offset, limit)
		if err != nil {
			return nil, dependency("search index", err)
		}
		items, err = s.Repo.ProductsByIDs(ctx, ids)
	} else {
		total, items, err = s.Repo.SearchProducts(ctx, q, offset, limit)
	}
	if err != nil {
		return nil, dependency("search products", err)
	}

	return &SearchResult{Items: items, Meta: util.Meta(page, offset, limit, total)}, nil
}

// UploadImage stores the blob under products/<uuid><ext> and returns its URL.
func (s *CatalogService) UploadImage(ctx context.Context, filename string, size int64, r io.Reader) (string, error) {
	if s.Images == nil {
		return "", fmt.Errorf("%w: image storage not configured", ErrConfiguration)
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: image file is required", ErrValidation)
	}
	if size > MaxImageSize {
		return "", fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, MaxImageSize)
	}

	key := "products/" + uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	url, err := s.Images.Put(ctx, key, io.LimitReader(r, MaxImageSize))
	if err != nil {
		return "", dependency("store image", err)
	}
	return url, nil
}

func (s *CatalogService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_error", "product_id", p.ID, "error", err)
	}
}
