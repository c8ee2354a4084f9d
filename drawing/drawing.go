// Package drawing holds the line-drawing data model and the codec for the
// compact binary format that drawings are stored in inside comment text.
package drawing

import "math"

// maxCoordinate is the fixed-point scale of a stored coordinate.
const maxCoordinate = 0xFFFF

// Point is a position normalized against the canvas, both axes in [0, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is one continuous stroke. A Line holding a single Point is a dot.
type Line []Point

// LineList is a complete drawing. Lines are drawn in order.
type LineList []Line

// PointCount returns the number of points over all lines.
func (l LineList) PointCount() int {
	n := 0
	for _, line := range l {
		n += len(line)
	}
	return n
}

// Quantize clamps v to [0, 1] and converts it to a stored coordinate.
func Quantize(v float64) uint16 {
	if math.IsNaN(v) {
		return 0
	}
	return uint16(math.Round(math.Min(math.Max(v, 0), 1) * maxCoordinate))
}

// Dequantize converts a stored coordinate back to [0, 1].
func Dequantize(raw uint16) float64 {
	return float64(raw) / maxCoordinate
}
