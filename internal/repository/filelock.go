package repository

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"
)

const lockRetryInterval = 10 * time.Millisecond

// flockTimeout acquires an advisory lock on f, polling with LOCK_NB until
// the timeout elapses or ctx is cancelled. how is syscall.LOCK_SH or
// syscall.LOCK_EX.
func flockTimeout(ctx context.Context, f *os.File, how int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		err := syscall.Flock(int(f.Fd()), how|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		if err != syscall.EWOULDBLOCK && err != syscall.EAGAIN {
			return fmt.Errorf("lock account file: %w", err)
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%w after %s", ErrLockTimeout, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func funlock(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
