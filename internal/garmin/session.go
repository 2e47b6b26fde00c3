package garmin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/observability"
)

// Session is an authenticated handle to the upstream service. It lives only in memory.
type Session struct {
	ID          string
	Token       string
	DisplayName string
	CreatedAt   time.Time
}

// Authenticator performs a single login attempt.
type Authenticator interface {
	Login(ctx context.Context) (*Session, error)
}

// SessionConfig controls the login retry loop.
type SessionConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultSessionConfig mirrors the upstream client's historical behaviour: 3 attempts, 2s base delay.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{MaxRetries: 3, RetryDelay: 2 * time.Second}
}

// SessionManager owns the session lifecycle: log in once at construction,
// reuse the session afterwards, and never log in again once it has given up.
type SessionManager struct {
	mu      sync.Mutex
	auth    Authenticator
	cfg     SessionConfig
	logger  *zap.Logger
	wait    func(ctx context.Context, d time.Duration) error
	session *Session
	err     error
}

// Option customizes a SessionManager.
type Option func(*SessionManager)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *SessionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithWait replaces the backoff sleep, mainly for tests.
func WithWait(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(m *SessionManager) {
		if fn != nil {
			m.wait = fn
		}
	}
}

// NewSessionManager creates the manager and immediately attempts to log in.
// A failed login does not fail construction; it leaves the manager unusable
// and EnsureSession reports why.
func NewSessionManager(ctx context.Context, auth Authenticator, cfg SessionConfig, opts ...Option) *SessionManager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultSessionConfig().MaxRetries
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}

	m := &SessionManager{
		auth:   auth,
		cfg:    cfg,
		logger: zap.NewNop(),
		wait:   sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.login(ctx)
	return m
}

// EnsureSession returns the live session, or an error wrapping ErrSessionUnusable.
// It never triggers another login.
func (m *SessionManager) EnsureSession() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, m.err
	}
	return m.session, nil
}

// Usable reports whether a session was established.
func (m *SessionManager) Usable() bool {
	_, err := m.EnsureSession()
	return err == nil
}

func (m *SessionManager) login(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		m.logger.Info("logging in to upstream",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", m.cfg.MaxRetries),
		)

		sess, err := m.auth.Login(ctx)
		if err == nil && sess == nil {
			err = errNoSession
		}
		if err == nil {
			observability.RecordLogin("success")
			m.session = sess
			m.logger.Info("upstream login succeeded", zap.String("session_id", sess.ID))
			return
		}
		lastErr = err

		switch {
		case errors.Is(err, ErrAuth):
			observability.RecordLogin("auth_error")
			m.logger.Error("upstream rejected credentials; check garmin.email and garmin.password", zap.Error(err))
			m.fail(err)
			return

		case Retryable(err):
			if errors.Is(err, ErrThrottled) {
				observability.RecordLogin("throttled")
			} else {
				observability.RecordLogin("connectivity")
			}
			if attempt == m.cfg.MaxRetries {
				continue
			}
			delay := m.cfg.RetryDelay * time.Duration(attempt)
			m.logger.Warn("upstream login failed, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("wait", delay),
				zap.Error(err),
			)
			if werr := m.wait(ctx, delay); werr != nil {
				m.fail(werr)
				return
			}

		default:
			observability.RecordLogin("fatal")
			m.logger.Error("upstream login hit an unclassified error", zap.Error(err))
			m.fail(err)
			return
		}
	}

	m.logger.Error("all upstream login attempts failed; check network and proxy settings",
		zap.Int("attempts", m.cfg.MaxRetries),
		zap.Error(lastErr),
	)
	m.fail(fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, m.cfg.MaxRetries, lastErr))
}

func (m *SessionManager) fail(cause error) {
	m.session = nil
	m.err = fmt.Errorf("%w: %w", ErrSessionUnusable, cause)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
