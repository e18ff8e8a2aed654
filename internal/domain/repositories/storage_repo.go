package repositories

import (
	"context"
	"io"
)

// Pinner uploads content to IPFS and returns its content identifier.
type Pinner interface {
	Pin(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}
