package encoding

import (
	"bytes"

	"github.com/andybalholm/brotli"
)

// BrotliEncoderDecoder implements the EncoderAndDecoder interface using Brotli.
type BrotliEncoderDecoder struct{}

// Encode compresses the input data using Brotli.
func (b BrotliEncoderDecoder) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	_, err := bw.Write(data)
	if err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses the input data using Brotli.
func (b BrotliEncoderDecoder) Decode(data []byte) ([]byte, error) {
	return b.DecodeLimit(data, 0)
}

// DecodeLimit decompresses the input data using Brotli, producing at most
// limit bytes.
func (b BrotliEncoderDecoder) DecodeLimit(data []byte, limit int) ([]byte, error) {
	return readAllLimit(brotli.NewReader(bytes.NewReader(data)), limit, "brotli")
}
