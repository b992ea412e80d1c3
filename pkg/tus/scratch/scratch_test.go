package scratch

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir())
	require.NoError(t, err)

	return s
}

func sizePtr(n int64) *int64 { return &n }

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{
		UID:       "abc",
		Size:      sizePtr(11),
		Metadata:  map[string]string{storage.MetaFilename: "test.txt"},
		CreatedAt: time.Now().UTC(),
		Expires:   time.Now().Add(24 * time.Hour).UTC(),
	}
	require.NoError(t, s.Create(desc))

	got, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.UID)
	require.NotNil(t, got.Size)
	assert.Equal(t, int64(11), *got.Size)
	assert.Equal(t, int64(0), got.Offset)
	assert.Equal(t, "test.txt", got.Metadata[storage.MetaFilename])
	assert.False(t, got.Completed)

	// Payload starts empty.
	info, err := os.Stat(s.PayloadPath("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())

	err = s.Create(desc)
	assert.True(t, storage.IsAlreadyExists(err))
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	assert.True(t, storage.IsNotFound(err))
}

func TestAppendAdvancesOffsetAndPersists(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "u1", Size: sizePtr(11)}
	require.NoError(t, s.Create(desc))

	n, err := s.Append(&desc, strings.NewReader("hello "))
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, int64(6), desc.Offset)

	// A fresh load sees the new offset: the sidecar was rewritten.
	reloaded, err := s.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), reloaded.Offset)

	n, err = s.Append(&desc, strings.NewReader("world"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, int64(11), desc.Offset)
	assert.True(t, desc.IsFinal())

	data, err := os.ReadFile(s.PayloadPath("u1"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestAppendDiscardsBytesBeyondRecordedOffset(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "u1", Size: sizePtr(11)}
	require.NoError(t, s.Create(desc))

	_, err := s.Append(&desc, strings.NewReader("hello "))
	require.NoError(t, err)

	// Simulate a crash that flushed payload bytes the sidecar never saw.
	f, err := os.OpenFile(s.PayloadPath("u1"), os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("GARBAGE")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// Resuming from the recorded offset replaces the orphaned tail.
	_, err = s.Append(&desc, strings.NewReader("world"))
	require.NoError(t, err)

	data, err := os.ReadFile(s.PayloadPath("u1"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestAppendPartialCopyKeepsFlushedBytes(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "u1", Size: sizePtr(100)}
	require.NoError(t, s.Create(desc))

	boom := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("abc"), failingReader{err: boom})

	n, err := s.Append(&desc, src)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, int64(3), desc.Offset)

	// The sidecar on disk matches what was flushed, so the upload is
	// resumable at offset 3.
	reloaded, err := s.Get("u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), reloaded.Offset)
}

func TestAppendMissingPayload(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "ghost"}
	_, err := s.Append(&desc, strings.NewReader("x"))
	assert.True(t, storage.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "u1", Size: sizePtr(5)}
	require.NoError(t, s.Create(desc))

	require.NoError(t, s.Delete("u1"))

	_, err := os.Stat(s.PayloadPath("u1"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(s.infoPath("u1"))
	assert.True(t, os.IsNotExist(err))

	err = s.Delete("u1")
	assert.True(t, storage.IsNotFound(err))
}

func TestDeleteWithMissingPayloadStillRemovesSidecar(t *testing.T) {
	s := newTestStore(t)

	desc := Descriptor{UID: "u1", Size: sizePtr(5)}
	require.NoError(t, s.Create(desc))
	require.NoError(t, os.Remove(s.PayloadPath("u1")))

	require.NoError(t, s.Delete("u1"))

	err := s.Delete("u1")
	assert.True(t, storage.IsNotFound(err))
}

func TestListSkipsCorruptSidecars(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create(Descriptor{UID: "u1", Size: sizePtr(1)}))
	require.NoError(t, s.Create(Descriptor{UID: "u2", DeferLength: true}))
	require.NoError(t, os.WriteFile(s.infoPath("broken"), []byte("{nope"), 0644))

	descs, err := s.List()
	require.NoError(t, err)
	assert.Len(t, descs, 2)
}

func TestSidecarShape(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Create(Descriptor{
		UID:         "u1",
		DeferLength: true,
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}))

	raw, err := os.ReadFile(s.infoPath("u1"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	// A deferred length serializes as an explicit null, not a missing key.
	size, present := m["size"]
	assert.True(t, present)
	assert.Nil(t, size)

	assert.Equal(t, true, m["defer_length"])
	assert.Equal(t, float64(0), m["offset"])
	assert.Contains(t, m["created_at"], "2024-05-01T12:00:00Z")
	_, present = m["completed"]
	assert.False(t, present)
}

func TestDescriptorHelpers(t *testing.T) {
	now := time.Now()

	d := Descriptor{Size: sizePtr(10), Offset: 10}
	assert.True(t, d.IsFinal())

	d = Descriptor{Size: sizePtr(10), Offset: 4}
	assert.False(t, d.IsFinal())

	d = Descriptor{DeferLength: true, Offset: 10}
	assert.False(t, d.IsFinal())

	d = Descriptor{Expires: now.Add(-time.Minute)}
	assert.True(t, d.IsExpired(now))

	d = Descriptor{Expires: now.Add(time.Minute)}
	assert.False(t, d.IsExpired(now))

	d = Descriptor{}
	assert.False(t, d.IsExpired(now))

	d = Descriptor{UID: "u1", Metadata: map[string]string{storage.MetaFilename: "a.txt"}}
	assert.Equal(t, "a.txt", d.Filename())
	assert.Equal(t, storage.DefaultMimeType, d.MimeType())

	d = Descriptor{UID: "u1"}
	assert.Equal(t, "u1", d.Filename())
}
