package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/minimalapi/fornecedor/internal/api/middleware"
	"github.com/minimalapi/fornecedor/internal/api/response"
	"github.com/minimalapi/fornecedor/internal/auth"
	"github.com/minimalapi/fornecedor/internal/validator"
)

const (
	msgMissingUser        = "Usuário não informado."
	msgLockedOut          = "Usuário bloqueado."
	msgInvalidCredentials = "Usuário ou senha inválidos!"
)

// AccountHandler handles registration and login.
type AccountHandler struct {
	accounts *auth.Service
	issuer   *auth.Issuer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *auth.Service, issuer *auth.Issuer) *AccountHandler {
	return &AccountHandler{accounts: accounts, issuer: issuer}
}

// Register handles POST /Api/Registro. On success the new account is signed
// in and the token payload is returned.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req auth.RegisterRequest
	if !decodeAccount(w, r, &req, requestID) {
		return
	}

	u, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		var createErr *auth.CreateError
		if fields, ok := validator.AsError(err); ok {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fields, requestID)
			return
		}
		if errors.As(err, &createErr) {
			response.ErrWithDetails(w, http.StatusBadRequest, "REGISTRATION_FAILED", "Account could not be created", createErr.Errors, requestID)
			return
		}
		slog.Error("failed to register account", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register account", requestID)
		return
	}

	slog.Info("account registered", "userId", u.ID)
	h.writeToken(w, u, requestID)
}

// Login handles POST /Api/Login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req auth.LoginRequest
	if !decodeAccount(w, r, &req, requestID) {
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), req)
	if err != nil {
		if fields, ok := validator.AsError(err); ok {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fields, requestID)
			return
		}
		switch {
		case errors.Is(err, auth.ErrLockedOut):
			response.Err(w, http.StatusBadRequest, "LOCKED_OUT", msgLockedOut, requestID)
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.Err(w, http.StatusBadRequest, "INVALID_CREDENTIALS", msgInvalidCredentials, requestID)
		default:
			slog.Error("failed to authenticate", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		}
		return
	}

	h.writeToken(w, u, requestID)
}

func (h *AccountHandler) writeToken(w http.ResponseWriter, u *auth.User, requestID string) {
	tok, err := h.issuer.Issue(u)
	if err != nil {
		slog.Error("failed to issue token", "error", err, "userId", u.ID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", requestID)
		return
	}
	response.Success(w, http.StatusOK, tok, requestID)
}

// decodeAccount reads the JSON body into dst. A missing body and a literal
// null are both reported as a missing user.
func decodeAccount(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var raw json.RawMessage
	err := json.NewDecoder(r.Body).Decode(&raw)
	if errors.Is(err, io.EOF) || (err == nil && isJSONNull(raw)) {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", msgMissingUser, requestID)
		return false
	}
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
