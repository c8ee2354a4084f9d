package encoding

import (
	"bytes"

	"github.com/klauspost/compress/flate"
)

// DeflateEncoderDecoder implements the EncoderAndDecoder interface using raw
// deflate, without the zlib header and checksum.
type DeflateEncoderDecoder struct{}

// Encode compresses the input data using deflate.
func (d DeflateEncoderDecoder) Encode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	_, err = fw.Write(data)
	if err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decompresses the input data using deflate.
func (d DeflateEncoderDecoder) Decode(data []byte) ([]byte, error) {
	return d.DecodeLimit(data, 0)
}

// DecodeLimit decompresses the input data using deflate, producing at most
// limit bytes.
func (d DeflateEncoderDecoder) DecodeLimit(data []byte, limit int) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()
	return readAllLimit(fr, limit, "flate")
}
