package tus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlovesdoggo/put/pkg/storage"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

func TestSweepInterval(t *testing.T) {
	tests := []struct {
		name             string
		expirationPeriod time.Duration
		want             time.Duration
	}{
		{name: "default retention sweeps hourly", expirationPeriod: 24 * time.Hour, want: time.Hour},
		{name: "short retention clamps to a minute", expirationPeriod: time.Minute, want: time.Minute},
		{name: "long retention clamps to an hour", expirationPeriod: 30 * 24 * time.Hour, want: time.Hour},
		{name: "mid retention divides by ten", expirationPeriod: 100 * time.Minute, want: 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sweepInterval(tt.expirationPeriod))
		})
	}
}

// seedUpload writes a descriptor straight into scratch with the given
// expiry, bypassing the HTTP surface.
func seedUpload(t *testing.T, store *scratch.Store, uid string, expires time.Time) {
	t.Helper()

	size := int64(10)
	require.NoError(t, store.Create(scratch.Descriptor{
		UID:       uid,
		Size:      &size,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		Expires:   expires,
	}))
}

func TestSweepExpired(t *testing.T) {
	store, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	m := &recordingMetrics{}
	h := NewHandler(store, nil, Config{ExpirationPeriod: time.Hour}, m)

	now := time.Now().UTC()
	seedUpload(t, store, "expired-1", now.Add(-time.Minute))
	seedUpload(t, store, "expired-2", now.Add(-2*time.Hour))
	seedUpload(t, store, "live", now.Add(time.Hour))

	removed := h.SweepExpired(now)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 2, m.expired())

	_, err = store.Get("expired-1")
	assert.True(t, storage.IsNotFound(err))
	_, err = store.Get("expired-2")
	assert.True(t, storage.IsNotFound(err))

	_, err = store.Get("live")
	assert.NoError(t, err, "unexpired uploads must survive the sweep")
}

func TestSweepSkipsHeldUploads(t *testing.T) {
	store, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(store, nil, Config{ExpirationPeriod: time.Hour}, nil)

	now := time.Now().UTC()
	seedUpload(t, store, "held", now.Add(-time.Minute))

	// A writer in flight holds the uid; the sweep must leave it alone.
	unlock := h.locks.lock("held")
	assert.Equal(t, 0, h.SweepExpired(now))
	unlock()

	_, err = store.Get("held")
	assert.NoError(t, err)

	// Released, the next sweep reclaims it.
	assert.Equal(t, 1, h.SweepExpired(now))
	_, err = store.Get("held")
	assert.True(t, storage.IsNotFound(err))
}

func TestSweepEmptyStore(t *testing.T) {
	store, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	h := NewHandler(store, nil, Config{ExpirationPeriod: time.Hour}, nil)
	assert.Equal(t, 0, h.SweepExpired(time.Now()))
}
