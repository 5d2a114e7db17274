//go:build linux || darwin

package snapshot

import (
	"os"

	"golang.org/x/sys/unix"
)

// lock takes an exclusive advisory lock on path, creating it if needed, and
// blocks until the lock is held.
func lock(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// rlock takes a shared advisory lock on an open snapshot file. Writers
// replace snapshots by rename and never modify one in place.
func rlock(f *os.File) (func(), error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return nil, err
	}
	return func() { _ = unix.Flock(int(f.Fd()), unix.LOCK_UN) }, nil
}
