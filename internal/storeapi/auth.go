package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/gateway"
	"storefront-admin-service/internal/session"
)

const (
	loginPath  = "/wp-json/jwt-auth/v1/token"
	whoAmIPath = "/wp-json/wp/v2/users/me"
)

// AuthClient handles the credential exchanges with the store. Login runs
// before a session exists, so it uses its own HTTP client rather than
// the gateway.
type AuthClient struct {
	httpClient *http.Client
	gw         *gateway.Gateway
	log        *logrus.Entry
}

// NewAuthClient creates an auth client.
func NewAuthClient(gw *gateway.Gateway, timeout time.Duration, logger *logrus.Logger) *AuthClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AuthClient{
		httpClient: &http.Client{Timeout: timeout},
		gw:         gw,
		log:        logger.WithField("component", "auth_client"),
	}
}

// Login exchanges a username/password for an access and refresh token
// pair at the store's fixed token endpoint.
func (c *AuthClient) Login(ctx context.Context, storeURL, username, password string) (access, refresh string, err error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, session.NormalizeStoreURL(storeURL)+loginPath, bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("login failed: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", "", err
	}
	if result.Token == "" {
		return "", "", fmt.Errorf("login response missing token")
	}

	c.log.WithField("username", username).Info("Store login succeeded")
	return result.Token, result.RefreshToken, nil
}

// Validate probes the store with the active session's credentials: the
// lightweight "who am I" endpoint for bearer mode, a one-product list
// for key-pair mode (the users endpoint is not reachable with key-pair
// credentials).
func (c *AuthClient) Validate(ctx context.Context, mode session.Mode) error {
	if mode == session.ModeBearer {
		_, _, err := c.gw.DoRoot(ctx, http.MethodGet, whoAmIPath, nil, nil)
		return err
	}
	_, _, err := c.gw.Do(ctx, http.MethodGet, "/products", url.Values{"per_page": {"1"}}, nil)
	return err
}
