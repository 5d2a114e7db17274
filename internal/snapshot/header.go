package snapshot

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

const (
	// MagicNumber identifies snapshot files ("bptd" in little endian).
	MagicNumber uint32 = 0x64747062

	// FormatVersion is the only header version this package reads.
	FormatVersion uint16 = 1

	// HeaderSize is the fixed size of the file header in bytes.
	HeaderSize = 32
)

// Flags describe how the payload is stored.
type Flags uint16

const (
	// FlagCompressed marks a snappy-compressed payload.
	FlagCompressed Flags = 1 << iota

	knownFlags = FlagCompressed
)

// Header precedes the payload in every snapshot file.
// Layout: [Magic: 4][Version: 2][Flags: 2][Length: 8][Checksum: 8][Reserved: 4]
// Total: 32 bytes, little endian
type Header struct {
	Magic    uint32
	Version  uint16
	Flags    Flags
	Length   uint64 // payload bytes following the header, as stored
	Checksum uint64 // xxhash64 of the stored payload
}

// NewHeader describes payload as it will be written to disk.
func NewHeader(payload []byte, flags Flags) Header {
	return Header{
		Magic:    MagicNumber,
		Version:  FormatVersion,
		Flags:    flags,
		Length:   uint64(len(payload)),
		Checksum: xxhash.Sum64(payload),
	}
}

// MarshalBinary encodes the header into its fixed 32 byte form.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], uint16(h.Flags))
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.Checksum)
	// buf[24:32] reserved, zero
	return buf, nil
}

// UnmarshalBinary decodes a header without validating it.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return errors.Wrapf(ErrTruncated, "header is %d bytes, want %d", len(data), HeaderSize)
	}
	h.Magic = binary.LittleEndian.Uint32(data[0:4])
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	h.Flags = Flags(binary.LittleEndian.Uint16(data[6:8]))
	h.Length = binary.LittleEndian.Uint64(data[8:16])
	h.Checksum = binary.LittleEndian.Uint64(data[16:24])
	return nil
}

// Validate checks the header fields that do not depend on the payload.
func (h Header) Validate() error {
	if h.Magic != MagicNumber {
		return ErrInvalidMagicNumber
	}
	if h.Version != FormatVersion {
		return errors.Wrapf(ErrInvalidVersion, "version %d", h.Version)
	}
	if h.Flags&^knownFlags != 0 {
		return errors.Wrapf(ErrUnknownFlags, "flags %#x", uint16(h.Flags))
	}
	return nil
}

// Verify checks payload against the header's length and checksum.
func (h Header) Verify(payload []byte) error {
	if uint64(len(payload)) < h.Length {
		return errors.Wrapf(ErrTruncated, "payload is %d bytes, header says %d", len(payload), h.Length)
	}
	if uint64(len(payload)) > h.Length {
		return errors.Wrapf(ErrInvalidChecksum, "%d trailing bytes after payload", uint64(len(payload))-h.Length)
	}
	if xxhash.Sum64(payload) != h.Checksum {
		return ErrInvalidChecksum
	}
	return nil
}
