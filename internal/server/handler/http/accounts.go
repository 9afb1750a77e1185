// Package http provides the HTTP handlers for account generation,
// listing, and service status.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mirteney/accountbot/internal/models"
	"github.com/mirteney/accountbot/internal/repository"
)

// genericFailure is the only error text shown to callers for core
// failures; store paths and crypto details stay out of responses.
const genericFailure = "try again later"

// AccountService defines the account generation operations required by
// the HTTP handlers.
type AccountService interface {
	// CreateAccount generates a validated account for the given owner.
	CreateAccount(userID *int64) (models.Account, error)
}

// AccountHandler handles HTTP requests for generating and listing
// accounts and for reporting service status.
type AccountHandler struct {
	// Service generates new accounts.
	Service AccountService
	// Repo persists and loads account records.
	Repo repository.AccountRepository
	// Encryption reports whether passwords are encrypted at rest.
	Encryption bool
	// Log is the request-scoped structured logger.
	Log *zap.Logger
}

// GenerateRequest represents the JSON payload for account generation.
type GenerateRequest struct {
	// UserID is the optional owner of the new account.
	UserID *int64 `json:"userId,omitempty"`
}

// Generate handles POST /api/accounts/generate. It creates a fresh
// account, appends it to the store, and returns the plaintext login and
// password for one-time display. The password is never shown again.
func (h *AccountHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID != nil && *req.UserID <= 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	account, err := h.Service.CreateAccount(req.UserID)
	if err != nil {
		h.Log.Error("failed to generate account", zap.Error(err))
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}

	if err := h.Repo.Save(r.Context(), account); err != nil {
		h.Log.Error("failed to save account", zap.Error(err))
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"login":    account.Login,
		"password": account.Password,
	})
}

// List handles GET /api/accounts?userId=N. It returns only the logins of
// the caller's accounts; stored passwords are never re-displayed.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil || userID <= 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	accounts, err := h.Repo.FindByUserID(r.Context(), userID)
	if err != nil {
		h.Log.Error("failed to list accounts", zap.Error(err))
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}

	logins := make([]string, 0, len(accounts))
	for _, account := range accounts {
		logins = append(logins, account.Login)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"logins": logins,
	})
}

// Status handles GET /api/status and reports service liveness and
// whether password encryption is active.
func (h *AccountHandler) Status(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"encryption": h.Encryption,
	})
}
