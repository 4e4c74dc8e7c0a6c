package search

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeES answers like an Elasticsearch node and records what it was sent.
func fakeES(t *testing.T, searchResponse string) (*elasticsearch.Client, func() []recordedRequest) {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = io.WriteString(w, searchResponse)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
		default:
			_, _ = io.WriteString(w, `{"result":"created"}`)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	return client, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), reqs...)
	}
}

func TestProductIndex_Search(t *testing.T) {
	t.Parallel()

	client, requests := fakeES(t, `{"hits":{"total":{"value":3},"hits":[{"_id":"5"},{"_id":"2"},{"_id":"bogus"}]}}`)
	idx := &ProductIndex{ES: client, Index: "products"}

	total, ids, err := idx.Search(t.Context(), "mug", 10, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []uint{5, 2}, ids)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/products/_search", reqs[0].Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &body))
	assert.EqualValues(t, 10, body["from"])
	assert.EqualValues(t, 5, body["size"])
	mm := body["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "mug", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestProductIndex_IndexAndRemove(t *testing.T) {
	t.Parallel()

	client, requests := fakeES(t, `{}`)
	idx := &ProductIndex{ES: client, Index: "products"}

	desc := "blue"
	require.NoError(t, idx.IndexProduct(t.Context(), models.Product{ID: 7, Name: "Mug", Description: &desc, CategoryID: 2}))
	// a missing document is not an error
	require.NoError(t, idx.RemoveProduct(t.Context(), 7))

	reqs := requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/products/_doc/7", reqs[0].Path)
	assert.Contains(t, reqs[0].Body, `"name":"Mug"`)
	assert.Contains(t, reqs[0].Body, `"description":"blue"`)
	assert.Equal(t, http.MethodDelete, reqs[1].Method)
	assert.Equal(t, "/products/_doc/7", reqs[1].Path)
}

func TestNewClient_Live(t *testing.T) {
	url := os.Getenv("ES_TEST_URL")
	if url == "" {
		t.Skip("ES_TEST_URL is required for tests")
	}

	_, err := NewClient(url, os.Getenv("ES_TEST_USER"), os.Getenv("ES_TEST_PASSWORD"))
	require.NoError(t, err)
}
