package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("catalog bytes")
	h := NewHeader(payload, FlagCompressed)

	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, buf, HeaderSize)
	assert.Equal(t, []byte("bptd"), buf[0:4])
	assert.Equal(t, make([]byte, 8), buf[24:32], "reserved bytes must be zero")

	var got Header
	require.NoError(t, got.UnmarshalBinary(buf))
	assert.Equal(t, h, got)
	require.NoError(t, got.Validate())
	require.NoError(t, got.Verify(payload))
}

func TestHeaderValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(h *Header)
		wantErr error
	}{
		{name: "bad_magic", mutate: func(h *Header) { h.Magic = 0x66726462 }, wantErr: ErrInvalidMagicNumber},
		{name: "bad_version", mutate: func(h *Header) { h.Version = 7 }, wantErr: ErrInvalidVersion},
		{name: "unknown_flag", mutate: func(h *Header) { h.Flags |= 1 << 9 }, wantErr: ErrUnknownFlags},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(nil, 0)
			tt.mutate(&h)
			assert.ErrorIs(t, h.Validate(), tt.wantErr)
		})
	}
}

func TestHeaderVerify(t *testing.T) {
	t.Parallel()

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	h := NewHeader(payload, 0)

	assert.ErrorIs(t, h.Verify(payload[:5]), ErrTruncated)
	assert.ErrorIs(t, h.Verify(append(payload, 9)), ErrInvalidChecksum)

	flipped := append([]byte(nil), payload...)
	flipped[3] ^= 0xff
	assert.ErrorIs(t, h.Verify(flipped), ErrInvalidChecksum)

	var short Header
	assert.ErrorIs(t, short.UnmarshalBinary(make([]byte, HeaderSize-1)), ErrTruncated)
}
