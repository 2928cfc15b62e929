package handlers

import (
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/models"
	"storefront-admin-service/internal/session"
	"storefront-admin-service/internal/storeapi"
)

// SessionHandler owns the connect/disconnect lifecycle of the store
// session and the independent media-upload token.
type SessionHandler struct {
	sessions *session.Store
	auth     *storeapi.AuthClient
	log      *logrus.Entry
}

func NewSessionHandler(sessions *session.Store, auth *storeapi.AuthClient, logger *logrus.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		auth:     auth,
		log:      logger.WithField("component", "session_handler"),
	}
}

// ConnectRequest carries the onboarding/settings inputs for a store
// connection. KeyPair mode needs consumerKey/consumerSecret; bearer mode
// needs username/password.
type ConnectRequest struct {
	StoreURL       string `json:"storeUrl" binding:"required"`
	AuthMethod     string `json:"authMethod" binding:"required"`
	ConsumerKey    string `json:"consumerKey"`
	ConsumerSecret string `json:"consumerSecret"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

// SessionStatus is the redacted view of the active session.
type SessionStatus struct {
	Connected bool   `json:"connected"`
	StoreURL  string `json:"storeUrl,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Connect validates the inputs, performs the login exchange for bearer
// mode, probes the store, and replaces the session wholesale.
// POST /api/v1/store/connect
func (h *SessionHandler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", "storeUrl and authMethod are required")
		return
	}

	storeURL := session.NormalizeStoreURL(req.StoreURL)
	if storeURL == "" {
		badRequest(c, "INVALID_INPUT", "Store address is required")
		return
	}

	var sess *session.Session
	var access, refresh string

	switch session.Mode(req.AuthMethod) {
	case session.ModeKeyPair:
		if req.ConsumerKey == "" || req.ConsumerSecret == "" {
			badRequest(c, "INVALID_INPUT", "Consumer key and secret are required for key-pair auth")
			return
		}
		sess = &session.Session{
			StoreURL:       storeURL,
			Mode:           session.ModeKeyPair,
			ConsumerKey:    req.ConsumerKey,
			ConsumerSecret: req.ConsumerSecret,
		}
	case session.ModeBearer:
		if req.Username == "" || req.Password == "" {
			badRequest(c, "INVALID_INPUT", "Username and password are required for token auth")
			return
		}
		var err error
		access, refresh, err = h.auth.Login(c.Request.Context(), storeURL, req.Username, req.Password)
		if err != nil {
			h.log.WithError(err).Warn("Store login failed")
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "LOGIN_FAILED", Message: err.Error()},
			})
			return
		}
		sess = &session.Session{
			StoreURL: storeURL,
			Mode:     session.ModeBearer,
			Username: req.Username,
		}
	default:
		badRequest(c, "INVALID_INPUT", fmt.Sprintf("Unknown auth method %q", req.AuthMethod))
		return
	}

	if err := h.sessions.Replace(c.Request.Context(), sess); err != nil {
		serverError(c, "SESSION_SAVE_FAILED", err)
		return
	}
	if sess.Mode == session.ModeBearer {
		h.sessions.SetTokens(access, refresh)
	}

	// Probe connectivity with the freshly applied credentials. A failed
	// probe rolls the connection back.
	if err := h.auth.Validate(c.Request.Context(), sess.Mode); err != nil {
		h.log.WithError(err).Warn("Connection test failed, rolling back session")
		if clearErr := h.sessions.Replace(c.Request.Context(), nil); clearErr != nil {
			h.log.WithError(clearErr).Error("Failed to clear session after failed probe")
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CONNECTION_FAILED", Message: err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": h.status()})
}

// Disconnect clears the session wholesale.
// POST /api/v1/store/disconnect
func (h *SessionHandler) Disconnect(c *gin.Context) {
	if err := h.sessions.Replace(c.Request.Context(), nil); err != nil {
		serverError(c, "SESSION_CLEAR_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Status reports the redacted session state.
// GET /api/v1/store/session
func (h *SessionHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "session": h.status()})
}

// TestConnection probes the store with the active credentials.
// POST /api/v1/store/test
func (h *SessionHandler) TestConnection(c *gin.Context) {
	sess, ok := h.sessions.Current()
	if !ok {
		badRequest(c, "NOT_CONNECTED", "No store is connected")
		return
	}
	if err := h.auth.Validate(c.Request.Context(), sess.Mode); err != nil {
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "CONNECTION_FAILED", Message: err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MediaTokenRequest carries credentials for the media-upload
// application user; they are folded into a basic-auth token.
type MediaTokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetMediaToken stores the media-upload token under its own key.
// PUT /api/v1/store/media-token
func (h *SessionHandler) SetMediaToken(c *gin.Context) {
	var req MediaTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_INPUT", "username and password are required")
		return
	}

	token := base64.StdEncoding.EncodeToString([]byte(req.Username + ":" + req.Password))
	if err := h.sessions.SetMediaToken(c.Request.Context(), token); err != nil {
		serverError(c, "MEDIA_TOKEN_SAVE_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ClearMediaToken removes the media-upload token.
// DELETE /api/v1/store/media-token
func (h *SessionHandler) ClearMediaToken(c *gin.Context) {
	if err := h.sessions.SetMediaToken(c.Request.Context(), ""); err != nil {
		serverError(c, "MEDIA_TOKEN_CLEAR_FAILED", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *SessionHandler) status() SessionStatus {
	sess, ok := h.sessions.Current()
	if !ok {
		return SessionStatus{Connected: false}
	}
	return SessionStatus{
		Connected: true,
		StoreURL:  sess.StoreURL,
		Mode:      string(sess.Mode),
		Username:  sess.Username,
	}
}
