package cache

import "errors"

// ErrUnsupportedURL is returned by Open for cache URLs it cannot serve.
var ErrUnsupportedURL = errors.New("unsupported cache url")
