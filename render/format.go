package render

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Format is an output document type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatEPS Format = "eps"
	FormatPDF Format = "pdf"
)

// ParseFormat resolves a format name; the empty name selects SVG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatEPS, FormatPDF:
		return f, nil
	case "":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatEPS:
		return "application/postscript"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/svg+xml"
	}
}

// fixed2 formats v with two decimals. Exact halves round away from zero.
func fixed2(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return number(v)
	}
	return new(big.Rat).SetFloat64(v).FloatString(2)
}

// number formats v in its shortest form, as document dimensions are
// written.
func number(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.Abs(v) >= 1e21 || (v != 0 && math.Abs(v) < 1e-6):
		// Exponents are written without zero padding: 1e-7, not 1e-07.
		s := strconv.FormatFloat(v, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
