// Package ingest moves finished uploads from the scratch store into the
// durable storage backend.
package ingest

import (
	"context"
	"io"
	"time"

	"github.com/jasonlovesdoggo/put/internal/logger"
	"github.com/jasonlovesdoggo/put/pkg/storage"
	"github.com/jasonlovesdoggo/put/pkg/tus/scratch"
)

// Pipeline ingests completed uploads into a backend and reclaims their
// scratch files. It implements the upload engine's Completer.
type Pipeline struct {
	backend storage.Storage
	scratch *scratch.Store
}

// New builds a pipeline over the given backend and scratch store.
func New(backend storage.Storage, sc *scratch.Store) *Pipeline {
	return &Pipeline{backend: backend, scratch: sc}
}

// Complete ingests the payload for desc and removes its scratch files.
//
// Ingestion is at-most-once: the descriptor is stamped completed after
// the backend acknowledges the upload and before reclaim, so a retry
// after a crash or a failed reclaim skips straight to cleanup. On backend
// failure scratch is left untouched and the error is returned; the client
// retriggers completion with a zero-byte PATCH at the final offset.
func (p *Pipeline) Complete(ctx context.Context, desc scratch.Descriptor) error {
	if !desc.Completed {
		if err := p.ingest(ctx, desc); err != nil {
			return err
		}

		desc.Completed = true
		if err := p.scratch.Put(desc); err != nil {
			// The payload is already durable and reclaim follows
			// immediately; losing the stamp costs nothing here.
			logger.Warn("failed to stamp completed flag", logger.KeyUID, desc.UID, logger.KeyError, err)
		}
	}

	if err := p.scratch.Delete(desc.UID); err != nil && !storage.IsNotFound(err) {
		return err
	}

	return nil
}

func (p *Pipeline) ingest(ctx context.Context, desc scratch.Descriptor) error {
	size := desc.Offset
	if desc.Size != nil {
		size = *desc.Size
	}

	f := storage.File{
		UID:       desc.UID,
		Name:      desc.Filename(),
		Size:      size,
		CreatedAt: time.Now().Unix(),
		Metadata:  desc.Metadata,
	}

	rc, err := p.scratch.Open(desc.UID)
	if err != nil {
		return err
	}
	defer rc.Close()

	// Cap the stream at the declared size so crash leftovers past the
	// recorded offset never reach the backend.
	if err := p.backend.Upload(ctx, f, io.LimitReader(rc, size)); err != nil {
		return err
	}

	logger.Info("upload ingested",
		logger.KeyUID, desc.UID,
		logger.KeyFilename, f.Name,
		logger.KeySize, size,
		logger.KeyBackend, p.backend.Type())
	return nil
}
