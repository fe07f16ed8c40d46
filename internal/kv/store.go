// Package kv provides the flat key-value persistence layer. All platform
// state is JSON-serialized under a small set of fixed keys; backends differ
// only in where the blobs live.
package kv

import (
	"context"
	"errors"
)

// Persisted state keys.
const (
	KeyAccounts         = "sqboom_users"
	KeyChat             = "sqboom_chat"
	KeyPlatformSettings = "sqboom_platform_settings"
	KeyCouponSettings   = "sqboom_coupon_settings"
	KeyTheme            = "sqboom_theme"
	KeyLastAccountID    = "sqboom_lastUserId"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: key not found")

// Store is a synchronous key-value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
