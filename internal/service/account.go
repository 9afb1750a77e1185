package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mirteney/accountbot/internal/models"
)

const (
	loginPrefix           = "User"
	loginSuffixLength     = 12
	defaultPasswordLength = 12
)

// AccountService generates new accounts. It performs no I/O; persisting
// the result belongs to the repository layer.
type AccountService struct {
	generator *PasswordGenerator
}

// NewAccountService constructs an AccountService using the provided
// password generator.
func NewAccountService(generator *PasswordGenerator) *AccountService {
	return &AccountService{generator: generator}
}

// CreateAccount generates a login and a password of the default length
// and returns them as a validated account owned by userID. A nil userID
// produces a single-tenant account.
func (s *AccountService) CreateAccount(userID *int64) (models.Account, error) {
	password, err := s.generator.Generate(defaultPasswordLength)
	if err != nil {
		return models.Account{}, fmt.Errorf("generate password: %w", err)
	}
	return models.NewAccount(userID, s.GenerateLogin(), password)
}

// GenerateLogin returns a login made of a fixed prefix and a UUID-derived
// alphanumeric suffix. The suffix space is large enough that collisions
// are negligible for any realistic number of accounts.
func (s *AccountService) GenerateLogin() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:loginSuffixLength]
	return loginPrefix + suffix
}
