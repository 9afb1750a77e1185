// Package repository provides persistence implementations for account
// records: a lock-safe single-file JSON store and a PostgreSQL-backed
// alternative behind the same interface.
package repository

import (
	"context"
	"errors"

	"github.com/mirteney/accountbot/internal/models"
)

var (
	// ErrTooLarge indicates the stored document exceeds the in-memory
	// load ceiling.
	ErrTooLarge = errors.New("account file too large")
	// ErrLockTimeout indicates the file lock could not be acquired
	// within the configured bound.
	ErrLockTimeout = errors.New("lock acquisition timed out")
	// ErrParse indicates the stored document is malformed.
	ErrParse = errors.New("malformed account file")
)

// AccountRepository is the persistence contract shared by the file and
// PostgreSQL backends. Save appends exactly one record and encrypts its
// password when encryption is active; LoadAll and FindByUserID return
// decrypted snapshots that callers may mutate freely.
type AccountRepository interface {
	// LoadAll returns every stored account in insertion order, with
	// passwords decrypted. A missing store reads as empty.
	LoadAll(ctx context.Context) ([]models.Account, error)
	// FindByUserID returns the accounts owned by userID, in insertion
	// order.
	FindByUserID(ctx context.Context, userID int64) ([]models.Account, error)
	// Save appends one account. The password is encrypted before it is
	// written; the record is never persisted partially.
	Save(ctx context.Context, account models.Account) error
}
