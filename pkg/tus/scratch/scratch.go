// Package scratch persists in-progress tus uploads.
//
// Every upload owns two files under the scratch directory:
//
//	<dir>/<uid>       raw payload bytes, appended in offset order
//	<dir>/<uid>.info  JSON sidecar with the upload descriptor
//
// The sidecar offset is the authoritative resume point. Append flushes
// payload bytes before rewriting the sidecar, and the sidecar is always
// written via temp-file-then-rename, so after a crash the recorded offset
// is never ahead of the bytes actually on disk. A payload longer than the
// recorded offset is truncated back on the next append.
package scratch

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// infoSuffix marks sidecar files next to their payloads.
const infoSuffix = ".info"

// Descriptor is the persistent state of one upload.
//
// Size is nil while the client defers declaring the total length
// (Upload-Defer-Length) and is set by the first PATCH that carries an
// Upload-Length header. Completed flips to true once the completion
// pipeline has durably ingested the payload, making ingestion
// at-most-once even if scratch removal fails afterwards.
type Descriptor struct {
	UID         string            `json:"uid"`
	Size        *int64            `json:"size"`
	Offset      int64             `json:"offset"`
	Metadata    map[string]string `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	DeferLength bool              `json:"defer_length"`
	Expires     time.Time         `json:"expires"`
	Completed   bool              `json:"completed,omitempty"`
}

// IsFinal reports whether every declared byte has been received.
func (d Descriptor) IsFinal() bool {
	return !d.DeferLength && d.Size != nil && d.Offset == *d.Size
}

// IsExpired reports whether the upload's retention window has passed.
func (d Descriptor) IsExpired(now time.Time) bool {
	return !d.Expires.IsZero() && now.After(d.Expires)
}

// Filename returns the client-declared filename or falls back to the uid.
func (d Descriptor) Filename() string {
	if name := d.Metadata[storage.MetaFilename]; name != "" {
		return name
	}
	return d.UID
}

// MimeType returns the client-declared media type or the default.
func (d Descriptor) MimeType() string {
	if mt := d.Metadata[storage.MetaMimeType]; mt != "" {
		return mt
	}
	return storage.DefaultMimeType
}

// Store reads and writes upload payloads and sidecars under one directory.
// The directory is owned by a single server process; callers serialize
// mutations per uid (the engine holds a per-uid lock across Append).
type Store struct {
	dir string
}

// New creates the scratch directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, storage.NewInvalidArgumentError("scratch directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storage.NewTransportError("mkdir", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the scratch directory path.
func (s *Store) Dir() string { return s.dir }

// PayloadPath returns the on-disk location of an upload's payload.
func (s *Store) PayloadPath(uid string) string {
	return filepath.Join(s.dir, uid)
}

func (s *Store) infoPath(uid string) string {
	return s.PayloadPath(uid) + infoSuffix
}

// Create initializes an empty payload and writes the initial sidecar.
func (s *Store) Create(desc Descriptor) error {
	if desc.UID == "" {
		return storage.NewInvalidArgumentError("uid is required")
	}

	if _, err := os.Stat(s.infoPath(desc.UID)); err == nil {
		return storage.NewAlreadyExistsError(desc.UID)
	}

	f, err := os.OpenFile(s.PayloadPath(desc.UID), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return storage.NewTransportError("create", s.PayloadPath(desc.UID), err)
	}
	if err := f.Close(); err != nil {
		return storage.NewTransportError("close", s.PayloadPath(desc.UID), err)
	}

	return s.Put(desc)
}

// Get loads the sidecar for uid.
func (s *Store) Get(uid string) (Descriptor, error) {
	data, err := os.ReadFile(s.infoPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return Descriptor{}, storage.NewNotFoundError(uid)
		}
		return Descriptor{}, storage.NewTransportError("read", s.infoPath(uid), err)
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return Descriptor{}, storage.NewInternalError("corrupt sidecar for "+uid, err)
	}

	return desc, nil
}

// Put rewrites the sidecar via temp-file-then-rename.
func (s *Store) Put(desc Descriptor) error {
	data, err := json.Marshal(desc)
	if err != nil {
		return storage.NewInternalError("encode sidecar for "+desc.UID, err)
	}

	path := s.infoPath(desc.UID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return storage.NewTransportError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return storage.NewTransportError("rename", path, err)
	}

	return nil
}

// Append copies r onto the payload starting at desc.Offset, flushes, then
// advances the descriptor offset and rewrites the sidecar. On a partial
// copy (client disconnect, short read) the bytes already flushed are kept
// and the sidecar records them, so the upload stays resumable; the copy
// error is still returned.
//
// Any payload bytes beyond desc.Offset are discarded first. They can only
// exist after a crash between a payload flush and the sidecar rename, and
// the recorded offset is the authoritative resume point.
func (s *Store) Append(desc *Descriptor, r io.Reader) (int64, error) {
	path := s.PayloadPath(desc.UID)

	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, storage.NewNotFoundError(desc.UID)
		}
		return 0, storage.NewTransportError("open", path, err)
	}
	defer f.Close()

	if err := f.Truncate(desc.Offset); err != nil {
		return 0, storage.NewTransportError("truncate", path, err)
	}
	if _, err := f.Seek(desc.Offset, io.SeekStart); err != nil {
		return 0, storage.NewTransportError("seek", path, err)
	}

	written, copyErr := io.Copy(f, r)

	if err := f.Sync(); err != nil {
		return written, storage.NewTransportError("sync", path, err)
	}

	if written > 0 {
		desc.Offset += written
		if err := s.Put(*desc); err != nil {
			return written, err
		}
	}

	if copyErr != nil {
		return written, storage.NewTransportError("append", path, copyErr)
	}

	return written, nil
}

// Delete removes the payload and sidecar. It fails with not-found only
// when neither file existed.
func (s *Store) Delete(uid string) error {
	payloadErr := os.Remove(s.PayloadPath(uid))
	infoErr := os.Remove(s.infoPath(uid))

	if os.IsNotExist(payloadErr) && os.IsNotExist(infoErr) {
		return storage.NewNotFoundError(uid)
	}
	if payloadErr != nil && !os.IsNotExist(payloadErr) {
		return storage.NewTransportError("remove", s.PayloadPath(uid), payloadErr)
	}
	if infoErr != nil && !os.IsNotExist(infoErr) {
		return storage.NewTransportError("remove", s.infoPath(uid), infoErr)
	}

	return nil
}

// PayloadSize returns the byte length of the payload on disk.
func (s *Store) PayloadSize(uid string) (int64, error) {
	info, err := os.Stat(s.PayloadPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, storage.NewNotFoundError(uid)
		}
		return 0, storage.NewTransportError("stat", s.PayloadPath(uid), err)
	}
	return info.Size(), nil
}

// Open returns a reader over the payload bytes for the pre-completion
// download path.
func (s *Store) Open(uid string) (*os.File, error) {
	f, err := os.Open(s.PayloadPath(uid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.NewNotFoundError(uid)
		}
		return nil, storage.NewTransportError("open", s.PayloadPath(uid), err)
	}
	return f, nil
}

// List loads every readable sidecar in the scratch directory. Corrupt
// sidecars are skipped with a warning rather than failing the sweep.
func (s *Store) List() ([]Descriptor, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, storage.NewTransportError("readdir", s.dir, err)
	}

	descs := make([]Descriptor, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), infoSuffix) {
			continue
		}

		uid := strings.TrimSuffix(entry.Name(), infoSuffix)
		desc, err := s.Get(uid)
		if err != nil {
			logger.Warn("skipping unreadable upload sidecar", logger.KeyUID, uid, logger.KeyError, err)
			continue
		}
		descs = append(descs, desc)
	}

	return descs, nil
}
