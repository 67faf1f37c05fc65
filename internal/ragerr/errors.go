// Package ragerr holds the stable error kinds the pipeline reports.
// Callers match with errors.Is; layers add context with fmt.Errorf and %w.
package ragerr

import "errors"

var (
	// ErrValidation marks malformed input: papers with no text content,
	// empty questions, negative retrieval weights. Never retried.
	ErrValidation = errors.New("validation error")

	// ErrEmbedding marks an embedding provider failure after retries are
	// exhausted. Ingestion of the affected batch aborts; committed chunks
	// from earlier batches stay valid.
	ErrEmbedding = errors.New("embedding provider failure")

	// ErrIndexUnavailable marks a query arriving before any index was
	// built or loaded.
	ErrIndexUnavailable = errors.New("index not initialized")

	// ErrGeneration marks a generative provider failure after the one
	// bounded retry. Retrieved sources survive it.
	ErrGeneration = errors.New("generation failure")
)
