// Package storage defines the blob store interface used to persist
// export batches, decoupling the exporter from any one backend.
package storage

import "context"

// Provider writes raw artifacts and returns a URI for the written
// object.
type Provider interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}
