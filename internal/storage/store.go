// Package storage persists the application's collections as whole JSON
// documents under fixed keys, rewritten wholesale on every mutation.
package storage

import "context"

// Document keys for the three stored collections. These match the keys the
// application has always used, so existing data files remain readable.
const (
	KeyServices    = "flow-report-services"
	KeyCatalog     = "flow-report-predefined-services"
	KeyClientPlans = "flow-report-client-plans"
)

// DocumentStore is the outbound port for durable storage. Each key holds
// one full serialized document; Set replaces it entirely.
type DocumentStore interface {
	// Get returns the document stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set replaces the document stored under key.
	Set(ctx context.Context, key string, data []byte) error

	Close() error
}
