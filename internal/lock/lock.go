// Package lock serializes writers that touch the same price matrix.
package lock

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

var ErrNotAcquired = errors.New("lock_not_acquired")

// Release gives the lock back. It is safe to call once.
type Release func(ctx context.Context) error

type Locker interface {
	// Acquire blocks until the key is held, ctx is done or the wait budget is spent.
	Acquire(ctx context.Context, key string) (Release, error)
}

// MatrixKey is the lock key guarding all rule sets of one matrix.
func MatrixKey(matrixID snowflake.ID) string {
	return fmt.Sprintf("pricematrix:%s:lock", matrixID.String())
}
