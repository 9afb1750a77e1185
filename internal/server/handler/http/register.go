package http

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/mirteney/accountbot/internal/models"
	"github.com/mirteney/accountbot/internal/repository"
)

// invitationPattern matches the invitation links the registration flow
// accepts.
var invitationPattern = regexp.MustCompile(`^https://m\.vten\.ru/from/user/\d+/[A-Za-z0-9]+$`)

// Registrar defines the remote registration operation required by the
// RegisterHandler. An implementation retries internally but never
// persists anything.
type Registrar interface {
	// Register performs the remote registration flow with the given
	// account's credentials.
	Register(ctx context.Context, invitation string, account models.Account) error
}

// RegisterHandler handles HTTP requests that register a freshly
// generated account with the remote game through the automation driver.
type RegisterHandler struct {
	// Service generates new accounts.
	Service AccountService
	// Repo persists the account after a successful registration.
	Repo repository.AccountRepository
	// Registrar performs the remote flow.
	Registrar Registrar
	// Log is the request-scoped structured logger.
	Log *zap.Logger
}

// RegisterRequest represents the JSON payload for registration.
type RegisterRequest struct {
	// UserID is the optional owner of the new account.
	UserID *int64 `json:"userId,omitempty"`
	// Invitation is the invitation link to register through.
	Invitation string `json:"invitation"`
}

// Register handles POST /api/register. It validates the invitation link,
// generates an account, runs the remote registration flow, and appends
// the record only after the flow succeeds. The plaintext credentials are
// returned for one-time display.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID != nil && *req.UserID <= 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !invitationPattern.MatchString(req.Invitation) {
		http.Error(w, "invalid invitation link", http.StatusBadRequest)
		return
	}

	account, err := h.Service.CreateAccount(req.UserID)
	if err != nil {
		h.Log.Error("failed to generate account", zap.Error(err))
		http.Error(w, genericFailure, http.StatusInternalServerError)
		return
	}

	if err := h.Registrar.Register(r.Context(), req.Invitation, account); err != nil {
		h.Log.Error("registration failed", zap.Error(err))
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
