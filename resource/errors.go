package resource

import (
	"errors"
	"fmt"
)

// ErrMemoryLimit is matched by errors.Is for every MemoryLimitError.
var ErrMemoryLimit = errors.New("memory limit exceeded")

// MemoryLimitError reports a reservation that can never fit the configured limit.
type MemoryLimitError struct {
	Requested int64
	Limit     int64
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: requested %d bytes, limit %d bytes", e.Requested, e.Limit)
}

// Is reports whether target is ErrMemoryLimit.
func (e *MemoryLimitError) Is(target error) bool { return target == ErrMemoryLimit }
