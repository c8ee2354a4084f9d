package render

import (
	"math"
	"strings"

	"humres/drawing"
)

const epsProlog = "%%BeginProlog\n" +
	"/M { moveto } bind def\n" +
	"/L { lineto } bind def\n" +
	"/z { closepath } bind def\n" +
	"%%EndProlog\n" +
	"0 setgray\n" +
	"1 setlinecap\n" +
	"1 setlinejoin\n"

// EPS renders lines as an Encapsulated PostScript document. PostScript
// puts the origin in the bottom left corner, so y is flipped.
func EPS(lines drawing.LineList, opts Options) string {
	opts = opts.Sanitize()

	var sb strings.Builder
	sb.WriteString("%!PS-Adobe-3.0 EPSF-3.0\n%%BoundingBox: 0 0 ")
	sb.WriteString(number(opts.Width))
	sb.WriteByte(' ')
	sb.WriteString(number(opts.Height))
	sb.WriteByte('\n')
	sb.WriteString(epsProlog)
	sb.WriteString(number(math.Round(opts.PenWidth)))
	sb.WriteString(" setlinewidth\n")

	for _, line := range lines {
		switch {
		case len(line) > 1:
			for j, p := range line {
				writeEPSPoint(&sb, p, opts)
				if j == 0 {
					sb.WriteString(" M ")
				} else {
					sb.WriteString(" L ")
				}
			}
		case len(line) == 1:
			writeEPSPoint(&sb, line[0], opts)
			sb.WriteString(" M z ")
		}
	}

	sb.WriteString("\nstroke\n%%EOF\n")
	return sb.String()
}

func writeEPSPoint(sb *strings.Builder, p drawing.Point, opts Options) {
	sb.WriteString(fixed2(p.X * opts.Width))
	sb.WriteByte(' ')
	// The conversion keeps the product from being fused into an FMA.
	sb.WriteString(fixed2(opts.Height - float64(p.Y*opts.Height)))
}
