package snapshot

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// WriteOptions control how WriteFile persists an image.
type WriteOptions struct {
	Compress bool
	Sync     bool // fsync the file and its directory before returning
}

// WriteFile atomically replaces path with the snapshot of v. The image is
// written to a temporary file in the same directory and renamed over path,
// so readers see either the old file or the new one. Returns the number of
// bytes written.
func WriteFile(path string, v any, opts WriteOptions) (int, error) {
	data, err := Encode(v, opts.Compress)
	if err != nil {
		return 0, err
	}

	dir := filepath.Dir(path)
	unlock, err := lock(path + ".lock")
	if err != nil {
		return 0, errors.Wrapf(err, "lock %s", path)
	}
	defer unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	fail := func(err error) (int, error) {
		err = errors.CombineErrors(err, tmp.Close())
		_ = os.Remove(tmpName)
		return 0, err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if opts.Sync {
		if err := tmp.Sync(); err != nil {
			return fail(err)
		}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}

	if opts.Sync {
		if err := syncDir(dir); err != nil {
			return 0, err
		}
	}
	return len(data), nil
}

// ReadFile reads and verifies the snapshot at path and decodes it into v.
// It holds a shared lock on the open file while reading and creates
// nothing. Returns the number of bytes read.
func ReadFile(path string, v any) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	unlock, err := rlock(f)
	if err != nil {
		return 0, errors.Wrapf(err, "lock %s", path)
	}
	data, err := io.ReadAll(f)
	unlock()
	if err != nil {
		return 0, err
	}
	if err := Decode(data, v); err != nil {
		return 0, errors.Wrapf(err, "read snapshot %s", path)
	}
	return len(data), nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	return errors.CombineErrors(d.Sync(), d.Close())
}
