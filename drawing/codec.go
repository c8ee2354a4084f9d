package drawing

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"humres/encoding"

	"github.com/sirupsen/logrus"
)

const (
	// LegacyBufferCapacity is the fixed size of an encoded payload: a
	// 4-byte record count followed by at most 256 records.
	LegacyBufferCapacity = 1028

	// DefaultMaxPayloadSize bounds how far a comment may decompress.
	// Well-formed payloads are exactly LegacyBufferCapacity bytes.
	DefaultMaxPayloadSize = 16 * LegacyBufferCapacity

	headerSize = 4
	recordSize = 4
	lineWidth  = 80
)

var (
	// ErrCapacityExceeded is returned by a strict Codec when a drawing does
	// not fit into LegacyBufferCapacity.
	ErrCapacityExceeded = errors.New("drawing exceeds payload capacity")
	// ErrTruncatedPayload is returned by a strict Codec when a payload ends
	// before all of its records, or its last line, are complete.
	ErrTruncatedPayload = errors.New("payload is truncated")
)

// DecodeError is returned when comment text cannot be turned back into a
// payload, either because it is not base64 or because it does not
// decompress.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode drawing: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TextEncoding turns compressed bytes into embeddable text and back.
// *base64.Encoding implements it. Decoding is handed text with any
// trailing padding removed.
type TextEncoding interface {
	EncodeToString(src []byte) string
	DecodeString(s string) ([]byte, error)
}

// Codec converts between LineLists and comment text.
//
// A Codec holds no mutable state and may be used from multiple goroutines.
// In its default, permissive mode, points that do not fit into the payload
// are dropped and incomplete payloads decode to whatever lines were
// complete. Setting Strict turns both conditions into errors.
//
// Payloads decompressing to more than MaxPayloadSize bytes are rejected;
// zero means DefaultMaxPayloadSize.
type Codec struct {
	Compression    encoding.EncoderAndDecoder
	Text           TextEncoding
	Strict         bool
	MaxPayloadSize int
}

// NewCodec returns a Codec for the format used by the game: zlib at
// maximum compression, base64 without padding.
func NewCodec() *Codec {
	return &Codec{
		Compression: encoding.ZlibEncoderDecoder{},
		Text:        base64.RawStdEncoding,
	}
}

var defaultCodec = NewCodec()

// Decode parses comment text using the default Codec.
func Decode(ctx context.Context, text string) (LineList, error) {
	return defaultCodec.Decode(ctx, text)
}

// Encode formats lines as comment text using the default Codec.
func Encode(ctx context.Context, lines LineList) (string, error) {
	return defaultCodec.Encode(ctx, lines)
}

// Decode parses comment text. Line breaks, semicolons and base64 padding
// are ignored.
func (c *Codec) Decode(ctx context.Context, text string) (LineList, error) {
	compressed, err := c.Text.DecodeString(stripFormatting(text))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := c.decompress(compressed)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return c.unpack(payload)
}

func (c *Codec) decompress(compressed []byte) ([]byte, error) {
	limit := c.MaxPayloadSize
	if limit <= 0 {
		limit = DefaultMaxPayloadSize
	}
	if limited, ok := c.Compression.(encoding.LimitedDecoder); ok {
		return limited.DecodeLimit(compressed, limit)
	}
	payload, err := c.Compression.Decode(compressed)
	if err != nil {
		return nil, err
	}
	if len(payload) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", encoding.ErrTooLarge, limit)
	}
	return payload, nil
}

// Encode formats lines as comment text, wrapped at 80 columns.
func (c *Codec) Encode(ctx context.Context, lines LineList) (string, error) {
	payload, dropped := pack(lines)
	if dropped > 0 {
		if c.Strict {
			return "", fmt.Errorf("%w: %d of %d points do not fit", ErrCapacityExceeded, dropped, lines.PointCount())
		}
		logrus.WithFields(logrus.Fields{
			"points":   lines.PointCount(),
			"dropped":  dropped,
			"capacity": LegacyBufferCapacity,
		}).Warn("Drawing truncated to payload capacity")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	compressed, err := c.Compression.Encode(payload)
	if err != nil {
		return "", fmt.Errorf("compress drawing: %w", err)
	}
	text := strings.TrimRight(c.Text.EncodeToString(compressed), "=") + ";"
	return wrapLines(text), nil
}

// pack lays lines out in a payload buffer of LegacyBufferCapacity bytes.
// Every non-empty line is written as its points followed by a zero
// sentinel record. A line is cut short when the buffer runs out, always
// leaving room for its sentinel, and skipped entirely when not even one
// point fits. Empty lines are not written at all.
func pack(lines LineList) (payload []byte, dropped int) {
	payload = make([]byte, LegacyBufferCapacity)
	offset := headerSize
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		toWrite := min(len(line), (len(payload)-offset)/recordSize-1)
		if toWrite <= 0 {
			dropped += len(line)
			continue
		}
		dropped += len(line) - toWrite
		for _, p := range line[:toWrite] {
			binary.LittleEndian.PutUint16(payload[offset:], Quantize(p.X))
			binary.LittleEndian.PutUint16(payload[offset+2:], Quantize(p.Y))
			offset += recordSize
		}
		// The buffer is zeroed, so the sentinel only needs the cursor moved.
		offset += recordSize
	}
	binary.LittleEndian.PutUint32(payload, uint32((offset-headerSize)/recordSize))
	return payload, dropped
}

func (c *Codec) unpack(payload []byte) (LineList, error) {
	lines := LineList{}
	if len(payload) < headerSize {
		if err := c.truncated(logrus.Fields{"payload_size": len(payload)}, "Payload has no record count"); err != nil {
			return nil, err
		}
		return lines, nil
	}
	count := int(binary.LittleEndian.Uint32(payload))
	if count == 0 {
		return lines, nil
	}

	available := (len(payload) - headerSize) / recordSize
	if count > available {
		if err := c.truncated(logrus.Fields{"records": count, "available": available}, "Payload holds fewer records than announced"); err != nil {
			return nil, err
		}
		count = available
	}

	current := Line{}
	for i := 0; i < count; i++ {
		offset := headerSize + i*recordSize
		x := binary.LittleEndian.Uint16(payload[offset:])
		y := binary.LittleEndian.Uint16(payload[offset+2:])
		if x|y == 0 {
			lines = append(lines, current)
			current = Line{}
		} else {
			current = append(current, Point{X: Dequantize(x), Y: Dequantize(y)})
		}
	}
	if len(current) > 0 {
		if err := c.truncated(logrus.Fields{"points": len(current)}, "Discarding unterminated line"); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// truncated reports an incomplete payload: an error in strict mode, a
// warning otherwise.
func (c *Codec) truncated(fields logrus.Fields, msg string) error {
	if c.Strict {
		return fmt.Errorf("%w: %s", ErrTruncatedPayload, strings.ToLower(msg))
	}
	logrus.WithFields(fields).Warn(msg)
	return nil
}

func stripFormatting(text string) string {
	text = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ';':
			return -1
		}
		return r
	}, text)
	return strings.TrimRight(text, "=")
}

func wrapLines(text string) string {
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/lineWidth + 1)
	for i := 0; i < len(text); i += lineWidth {
		sb.WriteString(text[i:min(i+lineWidth, len(text))])
		sb.WriteByte('\n')
	}
	return sb.String()
}
