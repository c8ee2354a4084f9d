package render

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultWidth    = 780
	DefaultHeight   = 256
	DefaultPenWidth = 23
)

// Options controls the size of a rendered document.
type Options struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	PenWidth float64 `json:"pen_width"`
}

// DefaultOptions returns the legacy document size and pen width.
func DefaultOptions() Options {
	return Options{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		PenWidth: DefaultPenWidth,
	}
}

// Sanitize takes the absolute value of every field and replaces fields that
// are zero, NaN or infinite with their defaults. Renderers call it
// themselves, so options are never rejected.
func (o Options) Sanitize() Options {
	return Options{
		Width:    sanitize(o.Width, DefaultWidth),
		Height:   sanitize(o.Height, DefaultHeight),
		PenWidth: sanitize(o.PenWidth, DefaultPenWidth),
	}
}

func sanitize(v, fallback float64) float64 {
	v = math.Abs(v)
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// ParseOptions builds sanitized Options from untyped values, such as query
// parameters. Each value is read up to the end of its leading number, so
// "12px" is 12; values without one fall back to the default.
func ParseOptions(width, height, penWidth string) Options {
	return Options{
		Width:    parseLeadingFloat(width),
		Height:   parseLeadingFloat(height),
		PenWidth: parseLeadingFloat(penWidth),
	}.Sanitize()
}

var leadingFloat = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

func parseLeadingFloat(s string) float64 {
	match := leadingFloat.FindString(strings.TrimSpace(s))
	if match == "" {
		return math.NaN()
	}
	match = strings.Replace(match, "Infinity", "Inf", 1)
	// Out of range values come back as ±Inf along with an error, which
	// Sanitize then replaces.
	v, _ := strconv.ParseFloat(match, 64)
	return v
}
