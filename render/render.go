// Package render turns decoded drawings into vector documents.
package render

import (
	"io"

	"humres/drawing"
)

// Render writes lines to w as a document of the given format.
func Render(w io.Writer, format Format, lines drawing.LineList, opts Options) error {
	switch format {
	case FormatPDF:
		return PDF(w, lines, opts)
	case FormatEPS:
		_, err := io.WriteString(w, EPS(lines, opts))
		return err
	default:
		_, err := io.WriteString(w, SVG(lines, opts))
		return err
	}
}
