package sitegate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend serves a status endpoint whose answer can be swapped mid-test.
type backend struct {
	hits   atomic.Int32
	code   atomic.Int32
	active atomic.Bool
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{}
	b.code.Store(http.StatusOK)
	b.active.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		if r.URL.Path != "/public/website-status/acme" {
			http.NotFound(w, r)
			return
		}
		code := int(b.code.Load())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if code != http.StatusOK {
			_, _ = w.Write([]byte(`{"title":"Internal Server Error","status":500}`))
			return
		}
		if b.active.Load() {
			_, _ = w.Write([]byte(`{"data":{"isActive":true,"isAdminEnabled":false}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"isActive":false,"isAdminEnabled":false}}`))
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func TestClient_Status(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t)
	c := NewClient(srv.URL, time.Second, time.Minute)

	st, err := c.Status(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, Status{IsActive: true, IsAdminEnabled: false}, st)
}

func TestClient_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	c := NewClient(srv.URL, time.Second, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for range 3 {
		_, err := c.Status(context.Background(), "acme")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), b.hits.Load())

	// After expiry the flags are fetched again.
	b.active.Store(false)
	now = now.Add(2 * time.Minute)

	st, err := c.Status(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, st.IsActive)
	assert.Equal(t, int32(2), b.hits.Load())
}

func TestClient_FailsOpenWithoutHistory(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.code.Store(http.StatusInternalServerError)
	c := NewClient(srv.URL, time.Second, time.Minute)

	st, err := c.Status(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, Open, st)
}

func TestClient_KeepsLastKnownOnFailure(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.active.Store(false)
	c := NewClient(srv.URL, time.Second, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Status(context.Background(), "acme")
	require.NoError(t, err)

	b.code.Store(http.StatusInternalServerError)
	now = now.Add(2 * time.Minute)

	st, err := c.Status(context.Background(), "acme")
	require.Error(t, err)
	assert.False(t, st.IsActive)
}

func TestClient_UnreachableBackend(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 200*time.Millisecond, time.Minute)

	st, err := c.Status(context.Background(), "acme")
	require.Error(t, err)
	assert.Equal(t, Open, st)
}
