package encoding

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// GzipEncoderDecoder implements the EncoderAndDecoder interface using gzip.
type GzipEncoderDecoder struct{}

// Encode compresses the input data using gzip.
func (g GzipEncoderDecoder) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	_, err = gw.Write(data)
	if err != nil {
		return nil, err
	}
	// It's important to close the writer to flush the data
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses the input data using gzip.
func (g GzipEncoderDecoder) Decode(data []byte) ([]byte, error) {
	return g.DecodeLimit(data, 0)
}

// DecodeLimit decompresses the input data using gzip, producing at most
// limit bytes.
func (g GzipEncoderDecoder) DecodeLimit(data []byte, limit int) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: gzip: %v", ErrDecompression, err)
	}
	defer gr.Close()
	return readAllLimit(gr, limit, "gzip")
}
