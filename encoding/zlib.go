package encoding

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// ZlibEncoderDecoder implements the EncoderAndDecoder interface using zlib.
// This is the container used by drawing comments.
type ZlibEncoderDecoder struct{}

// Encode compresses the input data using zlib at maximum compression.
func (z ZlibEncoderDecoder) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	_, err = zw.Write(data)
	if err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses the input data using zlib.
func (z ZlibEncoderDecoder) Decode(data []byte) ([]byte, error) {
	return z.DecodeLimit(data, 0)
}

// DecodeLimit decompresses the input data using zlib, producing at most
// limit bytes.
func (z ZlibEncoderDecoder) DecodeLimit(data []byte, limit int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", ErrDecompression, err)
	}
	defer zr.Close()
	return readAllLimit(zr, limit, "zlib")
}
