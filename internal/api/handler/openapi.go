package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/minimalapi/fornecedor/internal/api/middleware"
	"github.com/minimalapi/fornecedor/internal/api/response"
)

// openAPIDocument is the JSON rendering of the embedded YAML document with
// the validator clients use to revalidate their copy.
type openAPIDocument struct {
	body []byte
	etag string
}

// OpenAPIHandler serves the API description as JSON. Clients holding the
// current version get 304 Not Modified through If-None-Match.
type OpenAPIHandler struct {
	source []byte

	renderOnce sync.Once
	doc        *openAPIDocument
	renderErr  error
}

// NewOpenAPIHandler creates a handler for the given YAML document. Rendering
// happens on the first request and its outcome, failure included, is kept.
func NewOpenAPIHandler(source []byte) *OpenAPIHandler {
	return &OpenAPIHandler{source: source}
}

func (h *OpenAPIHandler) render() (*openAPIDocument, error) {
	h.renderOnce.Do(func() {
		body, err := yaml.YAMLToJSON(h.source)
		if err != nil {
			h.renderErr = err
			return
		}
		sum := sha256.Sum256(body)
		h.doc = &openAPIDocument{
			body: body,
			etag: `"` + hex.EncodeToString(sum[:16]) + `"`,
		}
	})
	return h.doc, h.renderErr
}

// ServeHTTP writes the JSON document.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	doc, err := h.render()
	if err != nil {
		slog.Error("failed to convert OpenAPI document to JSON", "error", err)
		requestID := middleware.GetRequestID(r.Context())
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render API document", requestID)
		return
	}

	w.Header().Set("ETag", doc.etag)
	w.Header().Set("Cache-Control", "public, max-age=300")

	if etagMatches(r.Header.Get("If-None-Match"), doc.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.body); err != nil {
		slog.Error("failed to write OpenAPI document", "error", err)
	}
}

// etagMatches reports whether an If-None-Match header names etag. Weak
// validators compare equal to their strong form.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
