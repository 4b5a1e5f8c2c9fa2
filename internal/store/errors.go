package store

import "errors"

// Sentinel errors for store operations. Use errors.Is() in calling code.
var (
	// ErrNoData indicates there is no stored data to operate on, e.g. an
	// export was requested with an empty archive.
	ErrNoData = errors.New("no stored data")
)
