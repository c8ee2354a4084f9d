package render

import (
	"strings"

	"humres/drawing"
)

// SVG renders lines as a single stroked path in an SVG document. Lines
// holding one point become a closed zero-length subpath, which round caps
// draw as a dot.
func SVG(lines drawing.LineList, opts Options) string {
	opts = opts.Sanitize()

	var d strings.Builder
	for _, line := range lines {
		switch {
		case len(line) > 1:
			for j, p := range line {
				if j == 0 {
					d.WriteByte('M')
				} else {
					d.WriteString(" L")
				}
				d.WriteString(fixed2(p.X * opts.Width))
				d.WriteByte(',')
				d.WriteString(fixed2(p.Y * opts.Height))
			}
		case len(line) == 1:
			d.WriteByte('M')
			d.WriteString(fixed2(line[0].X * opts.Width))
			d.WriteByte(',')
			d.WriteString(fixed2(line[0].Y * opts.Height))
			d.WriteByte('z')
		}
	}

	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	sb.WriteString(number(opts.Width))
	sb.WriteString(`px" height="`)
	sb.WriteString(number(opts.Height))
	sb.WriteString("px\">\n<path d=\"")
	sb.WriteString(d.String())
	sb.WriteString(`" fill="none" stroke="black" stroke-width="`)
	sb.WriteString(number(opts.PenWidth))
	sb.WriteString("\" stroke-linecap=\"round\" stroke-linejoin=\"round\" />\n</svg>")
	return sb.String()
}
