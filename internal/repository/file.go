package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/mirteney/accountbot/internal/models"
	"github.com/mirteney/accountbot/internal/security"
)

const (
	// MaxFileSize bounds the whole-document in-memory load. A store this
	// design cannot hold in memory needs an append-only log instead, not
	// a bigger ceiling.
	MaxFileSize = 16 << 20

	// DefaultLockTimeout bounds lock acquisition when the caller does
	// not configure one.
	DefaultLockTimeout = 5 * time.Second

	filePerm = 0600
)

// FileAccountRepository stores accounts as a pretty-printed JSON array in
// a single file. Writers hold an exclusive whole-file flock for the entire
// read-modify-write cycle and rewrite the file in place; readers hold a
// shared flock. The locking is advisory: every cooperating process must
// access the file through this repository.
//
// The repository borrows the FieldCipher; the cipher is immutable after
// construction and may be shared across repositories and goroutines.
type FileAccountRepository struct {
	path        string
	cipher      *security.FieldCipher
	lockTimeout time.Duration
}

// NewFileAccountRepository creates a repository over path. lockTimeout
// bounds every lock acquisition; a non-positive value falls back to
// DefaultLockTimeout.
func NewFileAccountRepository(path string, cipher *security.FieldCipher, lockTimeout time.Duration) *FileAccountRepository {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &FileAccountRepository{path: path, cipher: cipher, lockTimeout: lockTimeout}
}

// LoadAll returns every stored account in insertion order with passwords
// decrypted. A missing file reads as an empty store and is not created.
// The call aborts on the first record that fails to decrypt; silently
// dropping unreadable records would disguise a mis-configured key as
// data loss.
func (r *FileAccountRepository) LoadAll(ctx context.Context) ([]models.Account, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Account{}, nil
		}
		return nil, fmt.Errorf("open account file: %w", err)
	}
	defer f.Close()

	if err := flockTimeout(ctx, f, syscall.LOCK_SH, r.lockTimeout); err != nil {
		return nil, err
	}
	defer funlock(f)

	accounts, err := readLocked(f)
	if err != nil {
		return nil, err
	}

	decrypted := make([]models.Account, 0, len(accounts))
	for _, account := range accounts {
		plaintext, err := r.cipher.Decrypt(account.Password)
		if err != nil {
			return nil, fmt.Errorf("decrypt stored password: %w", err)
		}
		account.Password = plaintext
		decrypted = append(decrypted, account)
	}
	return decrypted, nil
}

// FindByUserID returns the accounts owned by userID in insertion order.
func (r *FileAccountRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Account, error) {
	accounts, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]models.Account, 0)
	for _, account := range accounts {
		if account.UserID != nil && *account.UserID == userID {
			matched = append(matched, account)
		}
	}
	return matched, nil
}

// Save appends one account. The whole cycle runs under an exclusive
// flock: read the current contents through the locked handle, append the
// record with its password encrypted, truncate and rewrite in place, and
// fsync before the lock is released. An error on any step leaves the file
// unchanged.
func (r *FileAccountRepository) Save(ctx context.Context, account models.Account) error {
	encrypted, err := r.cipher.Encrypt(account.Password)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}
	account.Password = encrypted

	f, err := os.OpenFile(r.path, os.O_RDWR|os.O_CREATE, filePerm)
	if err != nil {
		return fmt.Errorf("open account file: %w", err)
	}
	defer f.Close()

	if err := flockTimeout(ctx, f, syscall.LOCK_EX, r.lockTimeout); err != nil {
		return err
	}
	defer funlock(f)

	// Passwords stay as stored here; decrypting just to re-encrypt on
	// write would burn nonces for nothing.
	accounts, err := readLocked(f)
	if err != nil {
		return err
	}
	accounts = append(accounts, account)

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate account file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek account file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write account file: %w", err)
	}
	// Flush before the lock is released to shrink the crash window.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync account file: %w", err)
	}
	return nil
}

// readLocked reads the full document through the locked handle. The
// caller must hold at least a shared lock on f. Passwords are returned as
// stored, without decryption.
func readLocked(f *os.File) ([]models.Account, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat account file: %w", err)
	}
	if info.Size() == 0 {
		return []models.Account{}, nil
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek account file: %w", err)
	}
	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("read account file: %w", err)
	}

	var accounts []models.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return accounts, nil
}
