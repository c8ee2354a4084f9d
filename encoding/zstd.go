package encoding

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdEncoderDecoder implements the EncoderAndDecoder interface using Zstandard.
type ZstdEncoderDecoder struct{}

// Encode compresses the input data using Zstandard.
func (z ZstdEncoderDecoder) Encode(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, err
	}
	defer encoder.Close()

	encoded := encoder.EncodeAll(data, make([]byte, 0, len(data)))
	return encoded, nil
}

// Decode decompresses the input data using Zstandard.
func (z ZstdEncoderDecoder) Decode(data []byte) ([]byte, error) {
	return z.DecodeLimit(data, 0)
}

// DecodeLimit decompresses the input data using Zstandard, producing at
// most limit bytes.
func (z ZstdEncoderDecoder) DecodeLimit(data []byte, limit int) ([]byte, error) {
	// The reader is wrapped so that the decoder streams instead of
	// decoding small inputs into memory in one go.
	decoder, err := zstd.NewReader(io.MultiReader(bytes.NewReader(data)), zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompression, err)
	}
	defer decoder.Close()

	return readAllLimit(decoder, limit, "zstd")
}
