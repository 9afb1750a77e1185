// Package automation drives the remote character registration flow. The
// driver talks to the same endpoints the game's mobile pages submit to:
// it opens the invitation link, opens the training page, and posts the
// generated credentials to the save endpoint.
package automation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mirteney/accountbot/internal/models"
)

// Form field names used by the save page.
const (
	loginField    = "loginContainer:name"
	passwordField = "passwordContainer:password"
)

const retryBackoff = 2 * time.Second

// ErrRegistrationFailed indicates the remote flow did not complete within
// the configured number of attempts.
var ErrRegistrationFailed = errors.New("registration failed")

// Config carries the remote endpoints and retry policy for the driver.
type Config struct {
	// TrainingURL is opened before saving, mirroring the page flow a
	// real client goes through.
	TrainingURL string
	// SaveURL receives the login and password form submission.
	SaveURL string
	// PageTimeout bounds each individual request.
	PageTimeout time.Duration
	// MaxRetries bounds whole-flow attempts.
	MaxRetries int
}

// Registrar performs the remote registration flow. It never persists
// anything; the caller appends the record after a successful run, so a
// failed flow leaves no partial data behind.
type Registrar struct {
	client  *http.Client
	cfg     Config
	backoff time.Duration
	log     *zap.Logger
}

// NewRegistrar constructs a Registrar with its own HTTP client bounded
// by cfg.PageTimeout.
func NewRegistrar(cfg Config, log *zap.Logger) *Registrar {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	return &Registrar{
		client:  &http.Client{Timeout: cfg.PageTimeout},
		cfg:     cfg,
		backoff: retryBackoff,
		log:     log,
	}
}

// Register runs the full flow for the given account, retrying the whole
// flow with linear backoff up to MaxRetries times. Retrying individual
// steps would risk registering twice; the flow is all-or-nothing.
func (r *Registrar) Register(ctx context.Context, invitation string, account models.Account) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * r.backoff):
			}
		}

		if err := r.attempt(ctx, invitation, account); err != nil {
			lastErr = err
			r.log.Warn("registration attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max", r.cfg.MaxRetries),
				zap.Error(err),
			)
			continue
		}

		r.log.Info("account registered", zap.String("login", account.Login))
		return nil
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrRegistrationFailed, r.cfg.MaxRetries, lastErr)
}

// attempt performs one pass over the flow.
func (r *Registrar) attempt(ctx context.Context, invitation string, account models.Account) error {
	if err := r.open(ctx, invitation); err != nil {
		return fmt.Errorf("open invitation: %w", err)
	}
	if err := r.open(ctx, r.cfg.TrainingURL); err != nil {
		return fmt.Errorf("open training page: %w", err)
	}

	form := url.Values{
		loginField:    {account.Login},
		passwordField: {account.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.SaveURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit save form: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("save endpoint returned %s", resp.Status)
	}
	return nil
}

func (r *Registrar) open(ctx context.Context, pageURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("page returned %s", resp.Status)
	}
	return nil
}
