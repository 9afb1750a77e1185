package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mirteney/accountbot/internal/models"
)

// fakeAccountService implements AccountService for testing.
type fakeAccountService struct {
	account   models.Account
	createErr error
}

func (f *fakeAccountService) CreateAccount(userID *int64) (models.Account, error) {
	if f.createErr != nil {
		return models.Account{}, f.createErr
	}
	account := f.account
	account.UserID = userID
	return account, nil
}

// fakeRepo implements repository.AccountRepository for testing.
type fakeRepo struct {
	accounts []models.Account
	loadErr  error
	saveErr  error
	saved    []models.Account
}

func (f *fakeRepo) LoadAll(ctx context.Context) ([]models.Account, error) {
	return f.accounts, f.loadErr
}

func (f *fakeRepo) FindByUserID(ctx context.Context, userID int64) ([]models.Account, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	matched := make([]models.Account, 0)
	for _, a := range f.accounts {
		if a.UserID != nil && *a.UserID == userID {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (f *fakeRepo) Save(ctx context.Context, account models.Account) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, account)
	return nil
}

func TestAccountHandler_Generate(t *testing.T) {
	generated := models.Account{Login: "Userabc123", Password: "pw-secret"}

	tests := []struct {
		name           string
		body           string
		service        *fakeAccountService
		repo           *fakeRepo
		expectedCode   int
		expectedSubstr string
		expectSaved    int
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAccountService{account: generated},
			repo:           &fakeRepo{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "non-positive user id",
			body:           `{"userId":0}`,
			service:        &fakeAccountService{account: generated},
			repo:           &fakeRepo{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "generation error",
			body:           `{"userId":7}`,
			service:        &fakeAccountService{createErr: errors.New("rng broken")},
			repo:           &fakeRepo{},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "try again later",
		},
		{
			name:           "store error is generic",
			body:           `{"userId":7}`,
			service:        &fakeAccountService{account: generated},
			repo:           &fakeRepo{saveErr: errors.New("lock acquisition timed out")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "try again later",
		},
		{
			name:           "success",
			body:           `{"userId":7}`,
			service:        &fakeAccountService{account: generated},
			repo:           &fakeRepo{},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"login":"Userabc123"`,
			expectSaved:    1,
		},
		{
			name:           "success without owner",
			body:           `{}`,
			service:        &fakeAccountService{account: generated},
			repo:           &fakeRepo{},
			expectedCode:   http.StatusOK,
			expectedSubstr: `"password":"pw-secret"`,
			expectSaved:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &AccountHandler{Service: tt.service, Repo: tt.repo, Log: zap.NewNop()}

			req := httptest.NewRequest(http.MethodPost, "/api/accounts/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.Generate(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("status = %d; want %d", rec.Code, tt.expectedCode)
			}
			if !strings.Contains(rec.Body.String(), tt.expectedSubstr) {
				t.Errorf("body = %q; want substring %q", rec.Body.String(), tt.expectedSubstr)
			}
			if len(tt.repo.saved) != tt.expectSaved {
				t.Errorf("saved %d accounts; want %d", len(tt.repo.saved), tt.expectSaved)
			}
		})
	}
}

func TestAccountHandler_List(t *testing.T) {
	one, two := int64(1), int64(2)
	repo := &fakeRepo{accounts: []models.Account{
		{UserID: &one, Login: "a", Password: "pw"},
		{UserID: &two, Login: "b", Password: "pw"},
		{UserID: &one, Login: "c", Password: "pw"},
	}}
	handler := &AccountHandler{Repo: repo, Log: zap.NewNop()}

	req := httptest.NewRequest(http.MethodGet, "/api/accounts?userId=1", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Logins []string `json:"logins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Logins) != 2 || resp.Logins[0] != "a" || resp.Logins[1] != "c" {
		t.Errorf("logins = %v; want [a c]", resp.Logins)
	}
	// Passwords are never re-displayed.
	if strings.Contains(rec.Body.String(), "pw") {
		t.Errorf("list response leaked a password: %q", rec.Body.String())
	}
}

func TestAccountHandler_List_BadUserID(t *testing.T) {
	handler := &AccountHandler{Repo: &fakeRepo{}, Log: zap.NewNop()}

	for _, query := range []string{"", "userId=abc", "userId=0", "userId=-2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/accounts?"+query, nil)
		rec := httptest.NewRecorder()
		handler.List(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d; want %d", query, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestAccountHandler_List_RepoError(t *testing.T) {
	handler := &AccountHandler{
		Repo: &fakeRepo{loadErr: errors.New("decrypt stored password: decryption failed")},
		Log:  zap.NewNop(),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/accounts?userId=1", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "decrypt") {
		t.Errorf("response leaked internal detail: %q", rec.Body.String())
	}
}

func TestAccountHandler_Status(t *testing.T) {
	for _, encryption := range []bool{true, false} {
		handler := &AccountHandler{Encryption: encryption, Log: zap.NewNop()}

		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		rec := httptest.NewRecorder()
		handler.Status(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}

		var resp struct {
			Status     string `json:"status"`
			Encryption bool   `json:"encryption"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Status != "ok" || resp.Encryption != encryption {
			t.Errorf("status response = %+v; want ok/%v", resp, encryption)
		}
	}
}
