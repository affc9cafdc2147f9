package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	specpkg "github.com/minimalapi/fornecedor/api"
	"github.com/minimalapi/fornecedor/internal/api/handler"
)

func TestOpenAPIHandler_ReturnsJSON(t *testing.T) {
	t.Parallel()

	yamlSpec := []byte(`openapi: "3.0.3"
info:
  title: Test API
  version: "1.0.0"
paths: {}
`)
	h := handler.NewOpenAPIHandler(yamlSpec)
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err, "response should be valid JSON")

	assert.Equal(t, "3.0.3", result["openapi"])
	info := result["info"].(map[string]any)
	assert.Equal(t, "Test API", info["title"])
	assert.Contains(t, result, "paths")
}

func TestOpenAPIHandler_InvalidYAML(t *testing.T) {
	t.Parallel()

	h := handler.NewOpenAPIHandler([]byte("openapi: [unclosed"))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_ERROR", errorCode(t, parseEnvelope(t, w)))
	}
}

func TestOpenAPIHandler_EmbeddedDocument(t *testing.T) {
	t.Parallel()

	h := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	paths := result["paths"].(map[string]any)
	assert.Contains(t, paths, "/Api/Fornecedor")
	assert.Contains(t, paths, "/Api/Fornecedor/{id}")
	assert.Contains(t, paths, "/Api/Login")
	assert.Contains(t, paths, "/Api/Registro")
}

func TestOpenAPIHandler_ETagRevalidation(t *testing.T) {
	t.Parallel()

	h := handler.NewOpenAPIHandler(specpkg.OpenAPISpec)

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	tests := []struct {
		name        string
		ifNoneMatch string
		wantStatus  int
	}{
		{name: "current tag", ifNoneMatch: etag, wantStatus: http.StatusNotModified},
		{name: "weak form of current tag", ifNoneMatch: "W/" + etag, wantStatus: http.StatusNotModified},
		{name: "tag in a list", ifNoneMatch: `"stale", ` + etag, wantStatus: http.StatusNotModified},
		{name: "wildcard", ifNoneMatch: "*", wantStatus: http.StatusNotModified},
		{name: "stale tag", ifNoneMatch: `"stale"`, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
			req.Header.Set("If-None-Match", tt.ifNoneMatch)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, etag, w.Header().Get("ETag"))
			if tt.wantStatus == http.StatusNotModified {
				assert.Empty(t, w.Body.Bytes())
			}
		})
	}
}

func TestOpenAPIHandler_ETagFollowsDocument(t *testing.T) {
	t.Parallel()

	serve := func(doc string) string {
		w := httptest.NewRecorder()
		handler.NewOpenAPIHandler([]byte(doc)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		require.Equal(t, http.StatusOK, w.Code)
		return w.Header().Get("ETag")
	}

	first := serve("openapi: \"3.0.3\"\npaths: {}\n")
	again := serve("openapi: \"3.0.3\"\npaths: {}\n")
	changed := serve("openapi: \"3.0.3\"\npaths:\n  /x: {}\n")

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, changed)
}
