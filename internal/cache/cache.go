// Package cache holds the short-lived state shared between requests: the
// order a browser is paying for while it is away at a gateway, and the
// claims that keep the auto-cancel loop from cancelling an order twice.
package cache

import (
	"context"
	"time"
)

const (
	// PendingOrderTTL covers a gateway round trip.
	PendingOrderTTL = 30 * time.Minute
	// ClaimTTL bounds how long a crashed instance can hold an order.
	ClaimTTL = 10 * time.Minute
)

// PendingOrders maps a browser session to the order it is paying for.
type PendingOrders interface {
	Put(ctx context.Context, sessionID string, orderID uint64) error
	Get(ctx context.Context, sessionID string) (uint64, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// ClaimSet grants a key to at most one caller until released or expired.
type ClaimSet interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
