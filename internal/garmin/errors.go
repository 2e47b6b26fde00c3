package garmin

import "errors"

var (
	// ErrAuth is a credential failure. Terminal: never retried.
	ErrAuth = errors.New("authentication failed")
	// ErrThrottled means the upstream answered with too-many-requests.
	ErrThrottled = errors.New("rate limited")
	// ErrConnectivity covers transport failures and upstream 5xx responses.
	ErrConnectivity = errors.New("connectivity failure")
	// ErrRetriesExhausted is returned once the login retry budget is spent.
	ErrRetriesExhausted = errors.New("login retries exhausted")
	// ErrSessionUnusable wraps the cause that left the session manager without a session.
	ErrSessionUnusable = errors.New("upstream session unusable")

	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoSession   = errors.New("nil session")
)

// Retryable reports whether a login failure may be retried with backoff.
func Retryable(err error) bool {
	return errors.Is(err, ErrThrottled) || errors.Is(err, ErrConnectivity)
}
