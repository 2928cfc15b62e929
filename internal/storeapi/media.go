package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/models"
	"storefront-admin-service/internal/session"
)

const mediaPath = "/wp-json/wp/v2/media"

// ErrNoMediaToken is returned when an upload is attempted before the
// media-upload application user has been configured.
var ErrNoMediaToken = errors.New("storeapi: no media upload token configured")

// MediaClient uploads files to the store's media library. Uploads do not
// go through the gateway: the media endpoint only accepts the separately
// stored basic-auth application token, not the commerce credentials.
type MediaClient struct {
	sessions   *session.Store
	httpClient *http.Client
	log        *logrus.Entry
}

// NewMediaClient creates a media client.
func NewMediaClient(sessions *session.Store, timeout time.Duration, logger *logrus.Logger) *MediaClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &MediaClient{
		sessions:   sessions,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.WithField("component", "media_client"),
	}
}

// Upload posts a file as multipart form data and returns the media
// record with its public source URL, to be referenced in product image
// payloads.
func (c *MediaClient) Upload(ctx context.Context, filename string, file io.Reader) (*models.Media, error) {
	sess, ok := c.sessions.Current()
	if !ok {
		return nil, errors.New("storeapi: no store connected")
	}

	token := c.sessions.MediaToken(ctx)
	if token == "" {
		return nil, ErrNoMediaToken
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sess.StoreURL+mediaPath, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "filename": filename}).Warn("Media upload rejected")
		return nil, fmt.Errorf("media upload failed: %d - %s", resp.StatusCode, string(body))
	}

	var media models.Media
	if err := json.Unmarshal(body, &media); err != nil {
		return nil, fmt.Errorf("failed to parse media response: %w", err)
	}

	c.log.WithFields(logrus.Fields{"id": media.ID, "url": media.SourceURL}).Info("Media uploaded")
	return &media, nil
}
