package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Storage keys. The session record and the media-upload token are two
// independent records; the token is not part of the session and survives
// a disconnect/reconnect cycle on its own.
const (
	sessionKey    = "woo_dashboard_auth"
	mediaTokenKey = "wordpress_token"
)

// ErrNotFound is returned by a KV when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// KV is the durable storage the Store persists into. Redis in
// production; tests supply an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
}

// Store holds the process-wide session slot. The slot is replaced
// wholesale and never mutated in place, so readers only need the lock for
// the pointer swap itself. Bearer-mode access/refresh tokens live here,
// in memory, separate from the persisted record.
type Store struct {
	mu             sync.RWMutex
	current        *Session
	accessToken    string
	refreshToken   string
	kv             KV
	persistSecrets bool
	listeners      []func(*Session)
	log            *logrus.Entry
}

// NewStore seeds the in-memory slot from durable storage. Missing or
// malformed data means "no session"; it is never surfaced as an error.
func NewStore(kv KV, persistSecrets bool, logger *logrus.Logger) *Store {
	s := &Store{
		kv:             kv,
		persistSecrets: persistSecrets,
		log:            logger.WithField("component", "session"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	raw, err := kv.Get(ctx, sessionKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).Warn("Failed to read persisted session, starting disconnected")
		}
		return s
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || !sess.Valid() {
		s.log.Warn("Persisted session is malformed, starting disconnected")
		return s
	}

	s.current = &sess
	s.log.WithFields(logrus.Fields{"storeUrl": sess.StoreURL, "mode": sess.Mode}).Info("Restored store session")
	return s
}

// Current returns the active session, if any.
func (s *Store) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current, true
}

// Replace swaps the session wholesale, persists it synchronously and
// notifies subscribers. Passing nil disconnects: the persisted record is
// removed and the in-memory tokens are dropped.
func (s *Store) Replace(ctx context.Context, sess *Session) error {
	if sess != nil && !sess.Valid() {
		return errors.New("session: refusing to store a partially populated session")
	}

	s.mu.Lock()
	s.current = sess
	if sess == nil || sess.Mode != ModeBearer {
		s.accessToken = ""
		s.refreshToken = ""
	}
	listeners := make([]func(*Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if err := s.persist(ctx, sess); err != nil {
		return err
	}

	for _, fn := range listeners {
		fn(sess)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, sess *Session) error {
	if sess == nil {
		if err := s.kv.Del(ctx, sessionKey); err != nil {
			return err
		}
		s.log.Info("Store session cleared")
		return nil
	}

	record := *sess
	if !s.persistSecrets && record.Mode == ModeKeyPair {
		record.ConsumerKey = ""
		record.ConsumerSecret = ""
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, sessionKey, string(raw)); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"storeUrl": sess.StoreURL, "mode": sess.Mode}).Info("Store session saved")
	return nil
}

// Subscribe registers a callback invoked after every Replace.
func (s *Store) Subscribe(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetTokens stores the bearer access/refresh pair in memory only.
func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

// SetAccessToken replaces only the access token, used after a refresh.
func (s *Store) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
}

// Tokens returns the in-memory bearer token pair.
func (s *Store) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken, s.refreshToken
}

// MediaToken returns the persisted basic-auth token for media uploads,
// or "" when none is configured.
func (s *Store) MediaToken(ctx context.Context) string {
	raw, err := s.kv.Get(ctx, mediaTokenKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).Warn("Failed to read media token")
		}
		return ""
	}
	return raw
}

// SetMediaToken stores the media-upload token under its own key.
func (s *Store) SetMediaToken(ctx context.Context, token string) error {
	if token == "" {
		return s.kv.Del(ctx, mediaTokenKey)
	}
	return s.kv.Set(ctx, mediaTokenKey, token)
}
