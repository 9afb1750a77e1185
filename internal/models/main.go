// Package models defines the core data structures for account records.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAccount indicates that an account failed construction-time
// validation: a blank login or password, or a non-positive user ID.
var ErrInvalidAccount = errors.New("invalid account")

// Account represents one generated account. Accounts are validated at
// construction, appended to a repository exactly once, and never mutated
// afterwards. The JSON field names are the on-disk compatibility contract
// and must not change.
type Account struct {
	// UserID is the optional identifier of the owning chat user.
	// It is absent in single-tenant mode and positive when present.
	UserID *int64 `json:"userId,omitempty"`
	// Login is the generated account name. Never blank.
	Login string `json:"login"`
	// Password is the account secret. Held in memory as plaintext and
	// never logged; encrypted at rest when encryption is active.
	Password string `json:"password"`
}

// NewAccount builds a validated Account. It returns ErrInvalidAccount for
// a blank login or password, or a non-positive userID.
func NewAccount(userID *int64, login, password string) (Account, error) {
	if strings.TrimSpace(login) == "" {
		return Account{}, fmt.Errorf("%w: login must not be blank", ErrInvalidAccount)
	}
	if strings.TrimSpace(password) == "" {
		return Account{}, fmt.Errorf("%w: password must not be blank", ErrInvalidAccount)
	}
	if userID != nil && *userID <= 0 {
		return Account{}, fmt.Errorf("%w: user id must be positive", ErrInvalidAccount)
	}
	return Account{UserID: userID, Login: login, Password: password}, nil
}
