package httpserver

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func TestCategoriesAndProducts(t *testing.T) {
	env := newTestEnv(t)
	_, customerTok := env.user(t, "c@example.com", models.RoleCustomer)
	_, adminTok := env.user(t, "admin@example.com", models.RoleAdmin)

	statusCode(t, env.do(t, http.MethodPost, "/api/categories", `{"name":"Kitchen"}`, customerTok), http.StatusForbidden)
	statusCode(t, env.do(t, http.MethodPost, "/api/categories", `{"description":"x"}`, adminTok), http.StatusBadRequest)

	rec := env.do(t, http.MethodPost, "/api/categories", `{"name":"Kitchen"}`, adminTok)
	statusCode(t, rec, http.StatusCreated)
	var cat models.Category
	decode(t, rec, &cat)

	body := `{"name":"Blue Mug","description":"ceramic","price":12.5,"stock":3,"category_id":` + idStr(cat.ID) + `}`
	rec = env.do(t, http.MethodPost, "/api/products", body, adminTok)
	statusCode(t, rec, http.StatusCreated)
	var mug models.Product
	decode(t, rec, &mug)
	assert.Equal(t, "12.50", mug.Price.StringFixed(2))

	statusCode(t, env.do(t, http.MethodPost, "/api/products", `{"name":"x","category_id":1,"price":-1}`, adminTok), http.StatusBadRequest)

	rec = env.do(t, http.MethodPut, "/api/products/"+idStr(mug.ID), `{"stock":9}`, adminTok)
	statusCode(t, rec, http.StatusOK)
	var patched models.Product
	decode(t, rec, &patched)
	assert.Equal(t, 9, patched.Stock)
	assert.Equal(t, "Blue Mug", patched.Name)

	rec = env.do(t, http.MethodGet, "/api/products/"+idStr(mug.ID), nil, "")
	statusCode(t, rec, http.StatusOK)

	var list []models.Product
	rec = env.do(t, http.MethodGet, "/api/products", nil, "")
	statusCode(t, rec, http.StatusOK)
	decode(t, rec, &list)
	assert.Len(t, list, 1)

	statusCode(t, env.do(t, http.MethodDelete, "/api/products/"+idStr(mug.ID), nil, adminTok), http.StatusOK)
	statusCode(t, env.do(t, http.MethodGet, "/api/products/"+idStr(mug.ID), nil, ""), http.StatusNotFound)

	statusCode(t, env.do(t, http.MethodDelete, "/api/categories/"+idStr(cat.ID), nil, adminTok), http.StatusOK)
	statusCode(t, env.do(t, http.MethodGet, "/api/categories/"+idStr(cat.ID), nil, ""), http.StatusNotFound)
}

func TestSearchProducts_DatabaseFallback(t *testing.T) {
	env := newTestEnv(t)
	testutil.SeedProduct(t, env.DB, "Blue Mug", "5")
	testutil.SeedProduct(t, env.DB, "Red mug", "6")
	testutil.SeedProduct(t, env.DB, "Teapot", "20")

	statusCode(t, env.do(t, http.MethodGet, "/api/products/search", nil, ""), http.StatusBadRequest)

	rec := env.do(t, http.MethodGet, "/api/products/search?q=MUG&size=1", nil, "")
	statusCode(t, rec, http.StatusOK)
	var res service.SearchResult
	decode(t, rec, &res)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Blue Mug", res.Items[0].Name)
	assert.EqualValues(t, 2, res.Meta.Total)
	assert.True(t, res.Meta.HasNext)
}

func multipartImage(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	_, adminTok := env.user(t, "admin@example.com", models.RoleAdmin)

	content := []byte("\x89PNG fake image bytes")
	body, ctype := multipartImage(t, "image", "mug.PNG", content)
	req := newRequest(t, http.MethodPost, "/api/products/upload", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminTok)
	rec := env.serve(req)
	statusCode(t, rec, http.StatusCreated)

	var out map[string]string
	decode(t, rec, &out)
	require.True(t, strings.HasPrefix(out["url"], "http://cdn.test/uploads/products/"), out["url"])
	require.True(t, strings.HasSuffix(out["url"], ".png"), out["url"])

	key := strings.TrimPrefix(out["url"], "http://cdn.test/uploads/")
	stored, err := os.ReadFile(filepath.Join(env.Uploads, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	rec = env.do(t, http.MethodGet, "/uploads/"+key, nil, "")
	statusCode(t, rec, http.StatusOK)
	assert.Equal(t, content, rec.Body.Bytes())

	body, ctype = multipartImage(t, "file", "mug.png", content)
	req = newRequest(t, http.MethodPost, "/api/products/upload", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+adminTok)
	rec = env.serve(req)
	statusCode(t, rec, http.StatusBadRequest)
	assert.Equal(t, "image file is required", errorOf(t, rec))
}
