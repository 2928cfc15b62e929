package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"storefront-admin-service/internal/session"
)

const (
	// commercePrefix is the API prefix for the product resource family
	commercePrefix = "/wp-json/wc/v3"
	// refreshPath is the fixed token-refresh endpoint
	refreshPath = "/wp-json/jwt-auth/v1/token/refresh"
)

// ErrNotConnected is returned when no store session is active.
var ErrNotConnected = errors.New("gateway: no store connected")

// Gateway is the single outbound call path to the storefront API. It
// injects the base URL and credentials from the active session and, on a
// 403 under bearer auth, performs exactly one refresh-and-retry cycle.
type Gateway struct {
	sessions   *session.Store
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logrus.Entry
}

// New creates a gateway over the given session store.
func New(sessions *session.Store, timeout time.Duration, rps float64, logger *logrus.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Gateway{
		sessions:   sessions,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		log:        logger.WithField("component", "gateway"),
	}
}

// Do issues an authenticated request against the commerce API. The path
// is relative to the /wp-json/wc/v3 prefix.
func (g *Gateway) Do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, http.Header, error) {
	return g.request(ctx, method, commercePrefix+path, query, body)
}

// DoRoot issues an authenticated request against an absolute path under
// the store root, for the non-commerce collaborators (media, users).
func (g *Gateway) DoRoot(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, http.Header, error) {
	return g.request(ctx, method, path, query, body)
}

// request implements the call state machine: sent -> success, or on an
// authorization failure under bearer auth a single refresh-and-retry.
// Any other failure propagates unchanged.
func (g *Gateway) request(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, http.Header, error) {
	sess, ok := g.sessions.Current()
	if !ok {
		return nil, nil, ErrNotConnected
	}

	access, _ := g.sessions.Tokens()
	respBody, header, err := g.doOnce(ctx, sess, access, method, path, query, body)
	if err == nil {
		return respBody, header, nil
	}

	var apiErr *APIError
	if sess.Mode != session.ModeBearer || !errors.As(err, &apiErr) || apiErr.Status != http.StatusForbidden {
		return nil, nil, err
	}

	newToken, refreshErr := g.refreshAccessToken(ctx, sess)
	if refreshErr != nil {
		// Refresh unavailable: the original 403 surfaces unchanged.
		g.log.WithError(refreshErr).Debug("Token refresh failed, propagating original 403")
		return nil, nil, err
	}

	g.sessions.SetAccessToken(newToken)
	return g.doOnce(ctx, sess, newToken, method, path, query, body)
}

// doOnce performs a single attempt with the given credentials applied.
func (g *Gateway) doOnce(ctx context.Context, sess *session.Session, access, method, path string, query url.Values, body interface{}) ([]byte, http.Header, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	// Key-pair credentials travel as query parameters: the storefront API
	// does not accept them as headers on plain HTTP client setups.
	if sess.Mode == session.ModeKeyPair {
		params.Set("consumer_key", sess.ConsumerKey)
		params.Set("consumer_secret", sess.ConsumerSecret)
	}

	fullURL := sess.StoreURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if sess.Mode == session.ModeBearer && access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, newAPIError(resp.StatusCode, respBody)
	}

	return respBody, resp.Header, nil
}

// refreshAccessToken exchanges the in-memory refresh token for a new
// access token. Errors here are compensated, never surfaced directly.
func (g *Gateway) refreshAccessToken(ctx context.Context, sess *session.Session) (string, error) {
	_, refresh := g.sessions.Tokens()
	if refresh == "" {
		return "", errors.New("gateway: no refresh token available")
	}

	payload, err := json.Marshal(map[string]string{"refresh_token": refresh})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sess.StoreURL+refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway: refresh endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", errors.New("gateway: refresh response missing token")
	}

	g.log.Info("Access token refreshed after authorization failure")
	return result.Token, nil
}

// APIError is a non-2xx response from the storefront API. Code and
// Message are filled from the API's error body when it parses.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var wire struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		apiErr.Code = wire.Code
		apiErr.Message = wire.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store API error (status %d, %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("store API error (status %d): %s", e.Status, e.Message)
}
