package repositories

import "context"

// EntitlementCache is an advisory mirror of granted content. A hit is a
// fast path for viewing only; it is never proof of payment.
type EntitlementCache interface {
	MarkGranted(ctx context.Context, contentID string) error
	IsGranted(ctx context.Context, contentID string) (bool, error)
	// ClearAll is only ever called on an explicit user request.
	ClearAll(ctx context.Context) error
}
