package shared

import (
	"context"
	"time"
)

// StoredResponse is a completed response kept for replay under an
// idempotency key.
type StoredResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	// RequestHash is the hex SHA-256 of the request body that produced the
	// response. A replay must carry the same body.
	RequestHash string `json:"request_hash,omitempty"`
}

// IdempotencyStore keeps the outcome of create/update requests keyed by the
// client-supplied Idempotency-Key.
//
// A key moves through two states: reserved (request in flight) and
// completed (response saved). Both expire after the TTL passed in.
type IdempotencyStore interface {
	// Reserve claims key for a new request.
	// Returns true if the key was free, false if it is reserved or completed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Load returns the saved response for key.
	// Returns nil without error when the key is unknown or still in flight.
	Load(ctx context.Context, key string) (*StoredResponse, error)

	// Save completes a reserved key with its response.
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error

	// Release frees a reserved key so the client can retry.
	Release(ctx context.Context, key string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Name identifies the store implementation ("memory" or "redis").
	Name() string

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long a completed response is replayed when no
// TTL is configured.
const DefaultIdempotencyTTL = 24 * time.Hour
