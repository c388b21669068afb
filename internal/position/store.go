package position

import (
	"context"
	"strconv"
	"strings"
)

// Store is a shared key-value store holding whole string values. Writes
// overwrite, the last writer wins and there is no compare-and-swap.
type Store interface {
	// Get returns the value for key and whether it has been set.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error
	// Subscribe calls fn with the new value whenever key changes. Backends
	// without change notification return a no-op cancel func.
	Subscribe(key string, fn func(value string)) (cancel func())
	Close() error
}

// Read returns the slide number stored under key. Unset keys, read errors and
// values that are not decimal integers all report false.
func Read(ctx context.Context, s Store, key string) (int, bool) {
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, false
	}
	return Parse(v)
}

// Write stores n under key as decimal text.
func Write(ctx context.Context, s Store, key string, n int) error {
	return s.Set(ctx, key, strconv.Itoa(n))
}

// Parse decodes a stored position.
func Parse(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}
