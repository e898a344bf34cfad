// Package runlock guards a data directory against concurrent engines.
// Two processes on the same dir would double-write the ledger and
// strip each other's alert mail, so the second one refuses to start.
package runlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFile = "engine.lock"

// Lock is a held advisory lock on a data directory.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock without waiting. A held lock elsewhere is an
// error naming the contested file.
func Acquire(dataDir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dataDir, lockFile))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("runlock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("runlock: another engine already holds %s", fl.Path())
	}
	return &Lock{fl: fl}, nil
}

// Release lets the next engine in. Safe to call exactly once.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
