package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrCacheMiss is returned by GetJSON when the key is not cached.
	ErrCacheMiss = errors.New("cache miss")
)
