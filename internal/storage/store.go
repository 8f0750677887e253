// Package storage is the persisted key/value layer every model writes through.
// Values are opaque strings; callers own serialization.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable wraps every backend failure.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a string keyed, string valued persistent map.
type Store interface {
	// Get returns ok == false for a missing key; that is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrUnavailable, op, key, err)
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed returns a Store that namespaces every key under prefix.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}
