package snapshot

import "github.com/cockroachdb/errors"

var (
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("invalid format version")
	ErrInvalidChecksum    = errors.New("invalid checksum")
	ErrTruncated          = errors.New("snapshot truncated")
	ErrUnknownFlags       = errors.New("unknown header flags")
)
