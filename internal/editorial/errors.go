package editorial

import "errors"

// ErrNotFound reports a command against an item that does not exist.
var ErrNotFound = errors.New("content item not found")
