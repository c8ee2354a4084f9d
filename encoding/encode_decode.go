package encoding

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Names accepted by ForName, in the order they are listed in errors.
const (
	NameZlib    = "zlib"
	NameDeflate = "deflate"
	NameFlate   = "flate"
	NameGzip    = "gzip"
	NameBrotli  = "br"
	NameZstd    = "zstd"
)

// ForName resolves a compression name. "deflate" follows its HTTP meaning
// and selects the zlib container; "flate" selects raw deflate.
func ForName(name string) (EncoderAndDecoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameZlib, NameDeflate:
		return ZlibEncoderDecoder{}, nil
	case NameFlate:
		return DeflateEncoderDecoder{}, nil
	case NameGzip:
		return GzipEncoderDecoder{}, nil
	case "brotli", NameBrotli:
		return BrotliEncoderDecoder{}, nil
	case NameZstd:
		return ZstdEncoderDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown encoding: %s", name)
	}
}

func Encode(data []byte, encoding string) ([]byte, error) {
	if encoding == "plain" || encoding == "" || encoding == "identity" {
		return data, nil
	}
	encoder, err := ForName(encoding)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(data)
}

func Decode(data []byte, encoding string) ([]byte, error) {
	if encoding == "plain" || encoding == "" || encoding == "identity" {
		return data, nil
	}
	decoder, err := ForName(encoding)
	if err != nil {
		return nil, err
	}
	return decoder.Decode(data)
}

// contentCodings are the names EncodeWithSomething may answer with. They
// are the HTTP content codings, so "deflate" here means zlib.
var contentCodings = []string{NameGzip, NameDeflate, NameBrotli, NameZstd}

// EncodeWithSomething picks the first content coding from an Accept-Encoding
// header that is acceptable and actually shrinks data. Codings with a quality
// of zero are refused. It returns data unchanged with an empty encoding name
// when nothing helps.
func EncodeWithSomething(data []byte, acceptEncoding string) ([]byte, string, error) {
	acceptEncodingChunks := strings.Split(acceptEncoding, ",")
	for _, chunk := range acceptEncodingChunks {
		encoding, params, _ := strings.Cut(chunk, ";")
		encoding = strings.ToLower(strings.TrimSpace(encoding))
		if !slices.Contains(contentCodings, encoding) || refused(params) {
			continue
		}
		encoded, err := Encode(data, encoding)
		if err != nil {
			return nil, "", err
		}
		if len(encoded) < len(data) {
			return encoded, encoding, nil
		}
	}

	return data, "", nil
}

// refused reports whether the parameters of an Accept-Encoding element carry
// "q=0". Unparsable quality values are refused as well.
func refused(params string) bool {
	for _, param := range strings.Split(params, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || q <= 0 {
			return true
		}
	}
	return false
}
