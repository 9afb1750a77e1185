package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mirteney/accountbot/internal/models"
	"github.com/mirteney/accountbot/internal/security"
)

// PostgresAccountRepository implements AccountRepository against a
// PostgreSQL database for deployments that already run one. The password
// column holds the same encrypted blob the file store holds; insertion
// order is preserved by the seq column.
type PostgresAccountRepository struct {
	// DB is the database handle for executing queries.
	DB     *sql.DB
	cipher *security.FieldCipher
}

// NewPostgresAccountRepository creates a repository over db. db must be a
// valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAccountRepository(db *sql.DB, cipher *security.FieldCipher) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db, cipher: cipher}
}

// LoadAll returns every stored account in insertion order with passwords
// decrypted. Like the file store, it aborts on the first record that
// fails to decrypt.
func (r *PostgresAccountRepository) LoadAll(ctx context.Context) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, login, password FROM accounts ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	return r.scanAccounts(rows)
}

// FindByUserID returns the accounts owned by userID in insertion order.
func (r *PostgresAccountRepository) FindByUserID(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT user_id, login, password FROM accounts WHERE user_id = $1 ORDER BY seq
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts by user: %w", err)
	}
	defer rows.Close()

	return r.scanAccounts(rows)
}

// Save appends one account with its password encrypted. Serialization of
// concurrent writers is the database's job here; the seq column assigns
// the insertion order.
func (r *PostgresAccountRepository) Save(ctx context.Context, account models.Account) error {
	encrypted, err := r.cipher.Encrypt(account.Password)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}

	var userID sql.NullInt64
	if account.UserID != nil {
		userID = sql.NullInt64{Int64: *account.UserID, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO accounts (user_id, login, password) VALUES ($1, $2, $3)
	`, userID, account.Login, encrypted)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepository) scanAccounts(rows *sql.Rows) ([]models.Account, error) {
	accounts := make([]models.Account, 0)
	for rows.Next() {
		var (
			userID   sql.NullInt64
			login    string
			password string
		)
		if err := rows.Scan(&userID, &login, &password); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		plaintext, err := r.cipher.Decrypt(password)
		if err != nil {
			return nil, fmt.Errorf("decrypt stored password: %w", err)
		}

		account := models.Account{Login: login, Password: plaintext}
		if userID.Valid {
			id := userID.Int64
			account.UserID = &id
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}
