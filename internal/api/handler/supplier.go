package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minimalapi/fornecedor/internal/api/middleware"
	"github.com/minimalapi/fornecedor/internal/api/response"
	"github.com/minimalapi/fornecedor/internal/supplier"
	"github.com/minimalapi/fornecedor/internal/validator"
)

const (
	msgSaveFailed   = "Houve um problema ao salvar o registro!"
	msgEditFailed   = "Houve um problema ao editar o registro!"
	msgDeleteFailed = "Houve um problema ao apagar o registro!"
)

// SupplierBasePath is the collection path; created resources live below it.
const SupplierBasePath = "/Api/Fornecedor"

type supplierRequest struct {
	Name        string  `json:"name"`
	LegalEntity bool    `json:"legalEntity"`
	Document    *string `json:"document"`
}

type supplierResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	LegalEntity bool    `json:"legalEntity"`
	Document    *string `json:"document"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toSupplierResponse(s *supplier.Supplier) supplierResponse {
	return supplierResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		LegalEntity: s.LegalEntity,
		Document:    s.Document,
		CreatedAt:   s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// SupplierHandler handles the /Api/Fornecedor endpoints.
type SupplierHandler struct {
	svc *supplier.Service
}

// NewSupplierHandler creates a new SupplierHandler.
func NewSupplierHandler(svc *supplier.Service) *SupplierHandler {
	return &SupplierHandler{svc: svc}
}

// List handles GET /Api/Fornecedor.
func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	suppliers, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("failed to list suppliers", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list suppliers", requestID)
		return
	}

	items := make([]supplierResponse, 0, len(suppliers))
	for i := range suppliers {
		items = append(items, toSupplierResponse(&suppliers[i]))
	}

	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// GetByID handles GET /Api/Fornecedor/{id}.
func (h *SupplierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, supplier.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Supplier not found", requestID)
			return
		}
		slog.Error("failed to get supplier", "error", err, "id", id)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get supplier", requestID)
		return
	}

	response.Success(w, http.StatusOK, toSupplierResponse(s), requestID)
}

// Create handles POST /Api/Fornecedor.
func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	req, ok := decodeSupplier(w, r, requestID)
	if !ok {
		return
	}

	s := &supplier.Supplier{Name: req.Name, LegalEntity: req.LegalEntity, Document: req.Document}
	if err := h.svc.Create(r.Context(), s); err != nil {
		writeSupplierError(w, err, msgSaveFailed, "failed to create supplier", requestID)
		return
	}

	response.Created(w, SupplierBasePath+"/"+s.ID.String(), toSupplierResponse(s), requestID)
}

// Update handles PUT /Api/Fornecedor/{id}. The route id wins over any id in the body.
func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	req, ok := decodeSupplier(w, r, requestID)
	if !ok {
		return
	}

	s := &supplier.Supplier{Name: req.Name, LegalEntity: req.LegalEntity, Document: req.Document}
	if err := h.svc.Replace(r.Context(), id, s); err != nil {
		writeSupplierError(w, err, msgEditFailed, "failed to update supplier", requestID)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /Api/Fornecedor/{id}.
func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeSupplierError(w, err, msgDeleteFailed, "failed to delete supplier", requestID)
		return
	}

	response.NoContent(w)
}

func parseID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", "Invalid supplier ID format", requestID)
		return uuid.Nil, false
	}
	return id, true
}

func decodeSupplier(w http.ResponseWriter, r *http.Request, requestID string) (supplierRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req supplierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return req, false
	}
	return req, true
}

func writeSupplierError(w http.ResponseWriter, err error, persistMsg, logMsg, requestID string) {
	if fields, ok := validator.AsError(err); ok {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fields, requestID)
		return
	}
	switch {
	case errors.Is(err, supplier.ErrNotFound):
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Supplier not found", requestID)
	case errors.Is(err, supplier.ErrPersistFailure):
		slog.Warn(logMsg, "error", err)
		response.Err(w, http.StatusBadRequest, "PERSIST_FAILED", persistMsg, requestID)
	default:
		slog.Error(logMsg, "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", persistMsg, requestID)
	}
}
