package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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
		return "", ErrNotFound
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

func keyPairSession() *Session {
	return &Session{
		StoreURL:       "https://shop.example.com",
		Mode:           ModeKeyPair,
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}
}

func TestStoreStartsDisconnected(t *testing.T) {
	store := NewStore(newMemoryKV(), true, testLogger())

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestReplacePersistsAndRestores(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, true, testLogger())

	require.NoError(t, store.Replace(context.Background(), keyPairSession()))

	// A new store over the same KV picks the session back up
	restored := NewStore(kv, true, testLogger())
	sess, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, "https://shop.example.com", sess.StoreURL)
	assert.Equal(t, ModeKeyPair, sess.Mode)
	assert.Equal(t, "ck_test", sess.ConsumerKey)
	assert.Equal(t, "cs_test", sess.ConsumerSecret)
}

func TestReplaceNilDisconnects(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, true, testLogger())
	require.NoError(t, store.Replace(context.Background(), keyPairSession()))

	require.NoError(t, store.Replace(context.Background(), nil))

	_, ok := store.Current()
	assert.False(t, ok)
	_, err := kv.Get(context.Background(), sessionKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceRejectsPartialSession(t *testing.T) {
	store := NewStore(newMemoryKV(), true, testLogger())

	err := store.Replace(context.Background(), &Session{
		StoreURL: "https://shop.example.com",
		Mode:     ModeKeyPair,
	})
	assert.Error(t, err)
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestMalformedPersistedSessionIsIgnored(t *testing.T) {
	kv := newMemoryKV()
	require.NoError(t, kv.Set(context.Background(), sessionKey, "{not json"))

	store := NewStore(kv, true, testLogger())
	_, ok := store.Current()
	assert.False(t, ok)
}

func TestReplaceNotifiesSubscribers(t *testing.T) {
	store := NewStore(newMemoryKV(), true, testLogger())

	var got []*Session
	store.Subscribe(func(sess *Session) {
		got = append(got, sess)
	})

	require.NoError(t, store.Replace(context.Background(), keyPairSession()))
	require.NoError(t, store.Replace(context.Background(), nil))

	require.Len(t, got, 2)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])
}

func TestBearerTokensStayInMemory(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, true, testLogger())

	require.NoError(t, store.Replace(context.Background(), &Session{
		StoreURL: "https://shop.example.com",
		Mode:     ModeBearer,
		Username: "admin",
	}))
	store.SetTokens("access", "refresh")

	raw, err := kv.Get(context.Background(), sessionKey)
	require.NoError(t, err)
	assert.NotContains(t, raw, "access")
	assert.NotContains(t, raw, "refresh")

	// The persisted record restores the session but not the tokens
	restored := NewStore(kv, true, testLogger())
	access, refresh := restored.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestReplaceClearsTokensOnModeChange(t *testing.T) {
	store := NewStore(newMemoryKV(), true, testLogger())
	require.NoError(t, store.Replace(context.Background(), &Session{
		StoreURL: "https://shop.example.com",
		Mode:     ModeBearer,
		Username: "admin",
	}))
	store.SetTokens("access", "refresh")

	require.NoError(t, store.Replace(context.Background(), keyPairSession()))

	access, refresh := store.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestPersistSecretsDisabledStripsKeyPair(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, false, testLogger())
	require.NoError(t, store.Replace(context.Background(), keyPairSession()))

	raw, err := kv.Get(context.Background(), sessionKey)
	require.NoError(t, err)

	var record Session
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	assert.Equal(t, "https://shop.example.com", record.StoreURL)
	assert.Empty(t, record.ConsumerKey)
	assert.Empty(t, record.ConsumerSecret)

	// The live session keeps its secrets for the current process
	sess, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "ck_test", sess.ConsumerKey)
}

func TestMediaTokenLifecycle(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, true, testLogger())
	ctx := context.Background()

	assert.Empty(t, store.MediaToken(ctx))

	require.NoError(t, store.SetMediaToken(ctx, "YWRtaW46c2VjcmV0"))
	assert.Equal(t, "YWRtaW46c2VjcmV0", store.MediaToken(ctx))

	// The token survives a disconnect
	require.NoError(t, store.Replace(ctx, nil))
	assert.Equal(t, "YWRtaW46c2VjcmV0", store.MediaToken(ctx))

	require.NoError(t, store.SetMediaToken(ctx, ""))
	assert.Empty(t, store.MediaToken(ctx))
}

func TestNormalizeStoreURL(t *testing.T) {
	assert.Equal(t, "https://shop.example.com", NormalizeStoreURL("https://shop.example.com/"))
	assert.Equal(t, "https://shop.example.com", NormalizeStoreURL("  https://shop.example.com  "))
	assert.Equal(t, "https://shop.example.com", NormalizeStoreURL("https://shop.example.com"))
}
