package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

// DefaultBaseURL is the Garmin Connect API gateway.
const DefaultBaseURL = "https://connectapi.garmin.com"

// ClientConfig bundles credentials and transport settings.
type ClientConfig struct {
	BaseURL  string
	Email    string
	Password string
	// Proxy is an HTTPS proxy URL; empty means a direct connection.
	Proxy   string
	Timeout time.Duration
}

// Client talks to the Garmin Connect API. Data calls go through a circuit breaker
// so a failing upstream is not hammered with one request per kind and day.
type Client struct {
	http    *resty.Client
	email   string
	pass    string
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("NK", "NT")
	if cfg.Proxy != "" {
		rc.SetProxy(cfg.Proxy)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "garmin",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Credential and 4xx answers prove the upstream is alive.
			return err == nil || !Retryable(err)
		},
	})

	return &Client{
		http:    rc,
		email:   cfg.Email,
		pass:    cfg.Password,
		circuit: cb,
		logger:  logger,
	}
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	DisplayName string `json:"display_name"`
}

// Login performs one login attempt and classifies its failure.
func (c *Client) Login(ctx context.Context) (*Session, error) {
	if c.email == "" || c.pass == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrAuth)
	}

	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"email": c.email, "password": c.pass}).
		SetResult(&out).
		Post("/auth/login")
	if cerr := classifyLogin(resp, err); cerr != nil {
		return nil, cerr
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}

	return &Session{
		ID:          uuid.NewString(),
		Token:       out.AccessToken,
		DisplayName: out.DisplayName,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Fetch returns the raw payload for one kind and day.
func (c *Client) Fetch(ctx context.Context, sess *Session, kind fitness.Kind, day time.Time) (json.RawMessage, error) {
	if sess == nil {
		return nil, errNoSession
	}
	path, query, err := endpoint(kind, sess.DisplayName, common.FormatDate(day))
	if err != nil {
		return nil, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.http.R().
			SetContext(ctx).
			SetAuthToken(sess.Token).
			SetQueryParams(query).
			Get(path)
		if cerr := classify(resp, execErr); cerr != nil {
			return nil, cerr
		}
		return json.RawMessage(resp.Body()), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", ErrConnectivity, errCircuitOpen, err)
		}
		return nil, err
	}

	raw, ok := result.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	c.logger.Debug("upstream payload received",
		zap.String("kind", string(kind)),
		zap.String("date", common.FormatDate(day)),
		zap.Int("bytes", len(raw)),
	)
	return raw, nil
}

func endpoint(kind fitness.Kind, displayName, date string) (string, map[string]string, error) {
	switch kind {
	case fitness.KindSteps:
		return "/wellness-service/wellness/dailySummaryChart/" + displayName,
			map[string]string{"date": date}, nil
	case fitness.KindHeartRate:
		return "/wellness-service/wellness/dailyHeartRate/" + displayName,
			map[string]string{"date": date}, nil
	case fitness.KindSleep:
		return "/wellness-service/wellness/dailySleepData/" + displayName,
			map[string]string{"date": date, "nonSleepBufferMinutes": "60"}, nil
	case fitness.KindActivities:
		return "/activitylist-service/activities/search/activities",
			map[string]string{"startDate": date, "endDate": date, "start": "0", "limit": "20"}, nil
	default:
		return "", nil, fmt.Errorf("unknown data kind %q", kind)
	}
}

// classify maps transport errors and status codes onto the error taxonomy.
func classify(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectivity, err)
	}
	code := resp.StatusCode()
	switch {
	case code == http.StatusTooManyRequests:
		return ErrThrottled
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, code)
	case code >= 500:
		return fmt.Errorf("%w: server error %d", ErrConnectivity, code)
	case code < 200 || code >= 300:
		return fmt.Errorf("%w: %d", errUnexpected, code)
	}
	return nil
}

// classifyLogin additionally treats a 400 that complains about credentials as ErrAuth.
func classifyLogin(resp *resty.Response, err error) error {
	cerr := classify(resp, err)
	if cerr == nil || err != nil {
		return cerr
	}
	if resp.StatusCode() == http.StatusBadRequest {
		body := strings.ToLower(string(resp.Body()))
		if common.HasAny(body, "credential", "password", "invalid user") {
			return fmt.Errorf("%w: %s", ErrAuth, strings.TrimSpace(string(resp.Body())))
		}
	}
	return cerr
}
