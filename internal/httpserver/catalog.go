package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return respond(c, http.StatusOK, cats)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_category")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_category", "invalid category id", nil)
	}

	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(l, "get_category", err)
	}
	return respond(c, http.StatusOK, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category", "invalid request body", err)
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return fail(l, "create_category", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return respond(c, http.StatusCreated, cat)
}

func (h *CatalogHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_category")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "update_category", "invalid category id", nil)
	}

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_category", "invalid request body", err)
	}

	cat, err := h.Svc.UpdateCategory(ctx, id, req)
	if err != nil {
		return fail(l, "update_category", err)
	}

	l.Info("update_category_success", "category_id", cat.ID)
	return respond(c, http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_category", "invalid category id", nil)
	}

	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return respond(c, http.StatusOK, map[string]uint{"id": id})
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		return fail(l, "list_products", err)
	}
	return respond(c, http.StatusOK, products)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "get_product", "invalid product id", nil)
	}

	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return respond(c, http.StatusOK, p)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_products", err)
	}
	return respond(c, http.StatusOK, res)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product", "invalid request body", err)
	}

	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return respond(c, http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "update_product", "invalid product id", nil)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_product", "invalid request body", err)
	}

	p, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "update_product", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return respond(c, http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, ok := pathID(c)
	if !ok {
		return badRequest(l, "delete_product", "invalid product id", nil)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return respond(c, http.StatusOK, map[string]uint{"id": id})
}

func (h *CatalogHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.upload_image")

	fh, err := c.FormFile("image")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			l.Warn("upload_image_error", "status", he.Code, "reason", "body rejected", "error", err)
			return he
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			l.Warn("upload_image_error", "status", http.StatusRequestEntityTooLarge, "reason", "body too large", "error", err)
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
		}
		return badRequest(l, "upload_image", "image file is required", err)
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest(l, "upload_image", "cannot read image", err)
	}
	defer f.Close()

	url, err := h.Svc.UploadImage(ctx, fh.Filename, fh.Size, f)
	if err != nil {
		return fail(l, "upload_image", err)
	}

	l.Info("upload_image_success", "url", url, "size", fh.Size)
	return respond(c, http.StatusCreated, map[string]string{"url": url})
}
