package kvstore

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amsvault/internal/store"
	"amsvault/internal/store/storetest"
)

func TestConformance_Memory(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.Store {
		s, err := Open(context.Background(), NewMemoryEngine(), WithClock(now))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

// Runs against a real server when AMSVAULT_TEST_REDIS_URL is set.
func TestConformance_Redis(t *testing.T) {
	url := os.Getenv("AMSVAULT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("AMSVAULT_TEST_REDIS_URL not set")
	}
	n := 0
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.Store {
		n++
		prefix := "amsvault-test:" + strconv.FormatInt(time.Now().UnixNano(), 36) + ":" + strconv.Itoa(n) + ":"
		engine, err := NewRedisEngine(context.Background(), url, prefix)
		require.NoError(t, err)
		s, err := Open(context.Background(), engine, WithClock(now))
		require.NoError(t, err)
		t.Cleanup(func() {
			_ = s.ClearAll(context.Background())
			_ = engine.Delete(context.Background(), keySchemaVersion)
			_ = s.Close()
		})
		return s
	})
}

func TestOpen_StampsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryEngine()
	s, err := Open(ctx, engine)
	require.NoError(t, err)

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.SchemaVersion, v)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryEngine()
	require.NoError(t, engine.Set(ctx, keySchemaVersion, []byte(strconv.Itoa(store.SchemaVersion+1))))

	_, err := Open(ctx, engine)
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

type failingEngine struct{ *MemoryEngine }

func (failingEngine) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func TestOpen_EngineFailureIsUnavailable(t *testing.T) {
	_, err := Open(context.Background(), failingEngine{NewMemoryEngine()})
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestCorruptCollectionIsReported(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryEngine()
	s, err := Open(ctx, engine)
	require.NoError(t, err)
	require.NoError(t, engine.Set(ctx, keyStories, []byte("{not json")))

	_, err = s.SearchStoriesByName(ctx, "")
	assert.Error(t, err)
}

func TestPersistsUnderCollectionKeys(t *testing.T) {
	ctx := context.Background()
	engine := NewMemoryEngine()
	s, err := Open(ctx, engine)
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, "Ana", "ana@example.com", "pw")
	require.NoError(t, err)

	raw, ok, err := engine.Get(ctx, keyUsers)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"email":"ana@example.com"`)
	assert.NotContains(t, string(raw), `"pw"`)

	counter, ok, err := engine.Get(ctx, counterPrefix+keyUsers)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", string(counter))
}

func TestMemoryEngine_Incr(t *testing.T) {
	ctx := context.Background()
	e := NewMemoryEngine()

	n, err := e.Incr(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = e.Incr(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, e.Set(ctx, "bad", []byte("x")))
	_, err = e.Incr(ctx, "bad")
	assert.Error(t, err)

	require.NoError(t, e.Delete(ctx, "c"))
	_, ok, err := e.Get(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}
