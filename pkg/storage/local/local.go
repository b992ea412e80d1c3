// Package local implements filesystem-backed file storage.
//
// Each stored file lives in its own directory under the configured root:
//
//	<root>/<uid>/<name>      raw payload bytes
//	<root>/<uid>/meta.json   descriptor sidecar
//
// The sidecar is written via temp-file-then-rename so a crash never leaves
// a readable object with a torn descriptor. A directory without a readable
// meta.json is treated as absent and skipped by List and Search.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
)

const metaFilename = "meta.json"

// Config holds configuration for the local storage backend.
type Config struct {
	// BasePath is the root directory for stored files.
	BasePath string

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode

	// FileMode is the permission mode for created files.
	// Default: 0644
	FileMode os.FileMode

	// Metrics is an optional metrics collector.
	Metrics storage.Metrics
}

// Store is a filesystem-backed implementation of storage.Storage.
type Store struct {
	basePath string
	dirMode  os.FileMode
	fileMode os.FileMode
	metrics  storage.Metrics

	// Serializes read-modify-write of sidecars (Rename).
	renameMu sync.Mutex
}

// New creates a local store rooted at cfg.BasePath, creating the directory
// if it does not exist.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, storage.NewInvalidArgumentError("base path is required")
	}

	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if err := os.MkdirAll(cfg.BasePath, cfg.DirMode); err != nil {
		return nil, storage.NewTransportError("mkdir", cfg.BasePath, err)
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, storage.NewTransportError("stat", cfg.BasePath, err)
	}
	if !info.IsDir() {
		return nil, storage.NewInvalidArgumentError("base path is not a directory")
	}

	return &Store{
		basePath: cfg.BasePath,
		dirMode:  cfg.DirMode,
		fileMode: cfg.FileMode,
		metrics:  cfg.Metrics,
	}, nil
}

// Type returns the backend identifier.
func (s *Store) Type() string { return "local" }

// BasePath returns the root directory of the store.
func (s *Store) BasePath() string { return s.basePath }

func (s *Store) objectDir(uid string) string {
	return filepath.Join(s.basePath, uid)
}

func (s *Store) metaPath(uid string) string {
	return filepath.Join(s.objectDir(uid), metaFilename)
}

// validName rejects names that would escape the object directory.
func validName(name string) error {
	if name == "" {
		return storage.NewInvalidArgumentError("file name is required")
	}
	if name == metaFilename {
		return storage.NewInvalidArgumentError("file name is reserved")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return storage.NewInvalidArgumentError("file name must not contain path separators")
	}
	return nil
}

func (s *Store) readMeta(uid string) (storage.File, error) {
	path := s.metaPath(uid)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.File{}, storage.NewNotFoundError(uid)
		}
		return storage.File{}, storage.NewTransportError("read", path, err)
	}

	var f storage.File
	if err := json.Unmarshal(data, &f); err != nil {
		return storage.File{}, storage.NewInternalError("corrupt sidecar "+path, err)
	}

	return f, nil
}

// writeMeta persists the sidecar via temp-file-then-rename.
func (s *Store) writeMeta(f storage.File) error {
	path := s.metaPath(f.UID)

	data, err := json.Marshal(f)
	if err != nil {
		return storage.NewInternalError("encode sidecar for "+f.UID, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, s.fileMode); err != nil {
		return storage.NewTransportError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return storage.NewTransportError("rename", path, err)
	}

	return nil
}

// Upload persists the stream under f.UID and writes the sidecar last, so a
// crash mid-upload leaves a directory without meta.json which readers skip.
// Re-uploading an existing uid replaces its payload and descriptor.
func (s *Store) Upload(ctx context.Context, f storage.File, r io.Reader) (err error) {
	start := time.Now()
	var written int64
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "upload", time.Since(start), err)
		if err == nil {
			storage.RecordBytes(s.metrics, s.Type(), "write", written)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if f.UID == "" {
		return storage.NewInvalidArgumentError("uid is required")
	}
	if err = validName(f.Name); err != nil {
		return err
	}

	dir := s.objectDir(f.UID)
	if err = os.MkdirAll(dir, s.dirMode); err != nil {
		return storage.NewTransportError("mkdir", dir, err)
	}

	dst := filepath.Join(dir, f.Name)
	tmp := dst + ".tmp"

	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.fileMode)
	if err != nil {
		return storage.NewTransportError("create", tmp, err)
	}

	written, err = io.Copy(out, r)
	if err != nil {
		out.Close()
		os.Remove(tmp)
		return storage.NewTransportError("write", tmp, err)
	}
	if err = out.Sync(); err != nil {
		out.Close()
		os.Remove(tmp)
		return storage.NewTransportError("sync", tmp, err)
	}
	if err = out.Close(); err != nil {
		os.Remove(tmp)
		return storage.NewTransportError("close", tmp, err)
	}

	if err = os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return storage.NewTransportError("rename", dst, err)
	}

	f.Size = written
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}

	return s.writeMeta(f)
}

// Download opens a readable stream over the stored payload.
func (s *Store) Download(ctx context.Context, uid string) (f storage.File, rc io.ReadCloser, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "download", time.Since(start), err)
		if err == nil {
			storage.RecordBytes(s.metrics, s.Type(), "read", f.Size)
		}
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, nil, err
	}

	f, err = s.readMeta(uid)
	if err != nil {
		return storage.File{}, nil, err
	}

	path := filepath.Join(s.objectDir(uid), f.Name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.File{}, nil, storage.NewInternalError("payload missing for "+uid, err)
		}
		return storage.File{}, nil, storage.NewTransportError("open", path, err)
	}

	return f, file, nil
}

// Get fetches the descriptor without opening the payload.
func (s *Store) Get(ctx context.Context, uid string) (f storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "get", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, err
	}

	return s.readMeta(uid)
}

// Delete removes the payload and descriptor.
func (s *Store) Delete(ctx context.Context, uid string) (err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "delete", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return err
	}

	if _, err = os.Stat(s.metaPath(uid)); err != nil {
		if os.IsNotExist(err) {
			return storage.NewNotFoundError(uid)
		}
		return storage.NewTransportError("stat", s.metaPath(uid), err)
	}

	dir := s.objectDir(uid)
	if err = os.RemoveAll(dir); err != nil {
		return storage.NewTransportError("remove", dir, err)
	}

	return nil
}

// Rename changes the display name of a stored file, moving the payload on
// disk and rewriting the sidecar.
func (s *Store) Rename(ctx context.Context, uid, newName string) (f storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "rename", time.Since(start), err)
	}()

	if err = ctx.Err(); err != nil {
		return storage.File{}, err
	}

	if err = validName(newName); err != nil {
		return storage.File{}, err
	}

	s.renameMu.Lock()
	defer s.renameMu.Unlock()

	f, err = s.readMeta(uid)
	if err != nil {
		return storage.File{}, err
	}

	if newName == f.Name {
		return f, nil
	}

	oldPath := filepath.Join(s.objectDir(uid), f.Name)
	newPath := filepath.Join(s.objectDir(uid), newName)

	if err = os.Rename(oldPath, newPath); err != nil {
		if os.IsNotExist(err) {
			return storage.File{}, storage.NewInternalError("payload missing for "+uid, err)
		}
		return storage.File{}, storage.NewTransportError("rename", newPath, err)
	}

	f.Name = newName
	if err = s.writeMeta(f); err != nil {
		return storage.File{}, err
	}

	return f, nil
}

// List enumerates stored files, optionally filtered by uid or name prefix,
// then sorts and windows the result.
func (s *Store) List(ctx context.Context, opts storage.ListOptions) (files []storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "list", time.Since(start), err)
	}()

	files, err = s.scan(ctx, func(f storage.File) bool {
		if opts.Prefix == "" {
			return true
		}
		return strings.HasPrefix(f.UID, opts.Prefix) || strings.HasPrefix(f.Name, opts.Prefix)
	})
	if err != nil {
		return nil, err
	}

	storage.SortFiles(files, opts.SortBy, opts.SortOrder)
	return storage.Window(files, opts.Offset, opts.Limit), nil
}

// Search filters stored files by the search options, then sorts and windows
// identically to List.
func (s *Store) Search(ctx context.Context, opts storage.SearchOptions) (files []storage.File, err error) {
	start := time.Now()
	defer func() {
		storage.ObserveOperation(s.metrics, s.Type(), "search", time.Since(start), err)
	}()

	files, err = s.scan(ctx, opts.Matches)
	if err != nil {
		return nil, err
	}

	storage.SortFiles(files, opts.SortBy, opts.SortOrder)
	return storage.Window(files, opts.Offset, opts.Limit), nil
}

// scan loads every readable sidecar under the root, keeping entries that
// pass the filter. Directories without a valid sidecar are skipped: they
// are either mid-upload or leftovers from a crash.
func (s *Store) scan(ctx context.Context, keep func(storage.File) bool) ([]storage.File, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, storage.NewTransportError("readdir", s.basePath, err)
	}

	files := make([]storage.File, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		f, err := s.readMeta(entry.Name())
		if err != nil {
			if storage.IsNotFound(err) {
				continue
			}
			var serr *storage.StorageError
			if errors.As(err, &serr) && serr.Code == storage.CodeInternal {
				logger.Warn("skipping unreadable sidecar", logger.KeyUID, entry.Name(), logger.KeyError, err)
				continue
			}
			return nil, err
		}

		if keep(f) {
			files = append(files, f)
		}
	}

	return files, nil
}

// Ensure Store implements storage.Storage.
var _ storage.Storage = (*Store)(nil)
