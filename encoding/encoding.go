package encoding

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrDecompression is wrapped by every Decoder failure caused by input
	// that is not validly compressed.
	ErrDecompression = errors.New("decompression failed")
	// ErrTooLarge is wrapped when decompressed data exceeds the limit given
	// to DecodeLimit.
	ErrTooLarge = errors.New("decompressed data too large")
)

type Encoder interface {
	Encode([]byte) ([]byte, error)
}

type Decoder interface {
	Decode([]byte) ([]byte, error)
}

// LimitedDecoder decodes at most limit bytes of output. A limit of zero
// or less means no limit.
type LimitedDecoder interface {
	DecodeLimit(data []byte, limit int) ([]byte, error)
}

type EncoderAndDecoder interface {
	Encoder
	Decoder
}

// readAllLimit reads r to the end, failing with ErrTooLarge as soon as more
// than limit bytes come out.
func readAllLimit(r io.Reader, limit int, algorithm string) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, int64(limit)+1)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompression, algorithm, err)
	}
	if limit > 0 && len(decoded) > limit {
		return nil, fmt.Errorf("%w: %s: more than %d bytes", ErrTooLarge, algorithm, limit)
	}
	return decoded, nil
}
