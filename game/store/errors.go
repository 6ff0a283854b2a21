// game/store/errors.go
package store

import "errors"

// Sentinel errors shared by all stores. Services match on these with
// errors.Is and translate them to their own error taxonomy.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)
