package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"storefront-admin-service/internal/gateway"
	"storefront-admin-service/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", session.ErrNotFound
	}
	return value, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newStack builds a session store and gateway over an in-memory KV.
func newStack(t *testing.T) (*session.Store, *gateway.Gateway) {
	t.Helper()
	sessions := session.NewStore(newMemoryKV(), true, testLogger())
	gw := gateway.New(sessions, 5*time.Second, 100, testLogger())
	return sessions, gw
}

// connect puts a key-pair session for the given store URL in place.
func connect(t *testing.T, sessions *session.Store, storeURL string) {
	t.Helper()
	require.NoError(t, sessions.Replace(context.Background(), &session.Session{
		StoreURL:       storeURL,
		Mode:           session.ModeKeyPair,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}))
}
