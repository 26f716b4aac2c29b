package rotation

import "errors"

// ErrNotFound - незавершенной ротации нет: неизвестный id, чужая или просроченная.
var ErrNotFound = errors.New("rotation not found or expired")
