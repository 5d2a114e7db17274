package snapshot

import (
	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"
	"github.com/golang/snappy"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Deterministic encoding keeps identical catalogs byte-identical on disk.
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// Encode serializes v into a complete snapshot image: header followed by
// the CBOR payload, snappy-compressed when compress is set.
func Encode(v any, compress bool) ([]byte, error) {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot payload")
	}

	var flags Flags
	if compress {
		payload = snappy.Encode(nil, payload)
		flags |= FlagCompressed
	}

	hdr, err := NewHeader(payload, flags).MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(hdr, payload...), nil
}

// Decode verifies a snapshot image produced by Encode and decodes its
// payload into v. Nothing is written to v unless the header and checksum
// are valid.
func Decode(data []byte, v any) error {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return err
	}
	if err := h.Validate(); err != nil {
		return err
	}

	payload := data[HeaderSize:]
	if err := h.Verify(payload); err != nil {
		return err
	}

	if h.Flags&FlagCompressed != 0 {
		var err error
		if payload, err = snappy.Decode(nil, payload); err != nil {
			return errors.Wrap(err, "decompress snapshot payload")
		}
	}

	if err := decMode.Unmarshal(payload, v); err != nil {
		return errors.Wrap(err, "decode snapshot payload")
	}
	return nil
}
