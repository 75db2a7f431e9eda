package content

import "errors"

// ErrUnavailable marks failures of the backing database, as opposed to
// expected outcomes such as conflicts or missing rows.
var ErrUnavailable = errors.New("content store unavailable")

// ErrInvalidItem reports a new item rejected before it reached the database.
var ErrInvalidItem = errors.New("invalid content item")
