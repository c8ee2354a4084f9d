package render

import (
	"io"

	"humres/drawing"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders lines onto a single page of width by height points. Lines
// holding one point are drawn as filled dots of pen width diameter.
func PDF(w io.Writer, lines drawing.LineList, opts Options) error {
	opts = opts.Sanitize()

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opts.Width, Ht: opts.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetFillColor(0, 0, 0)
	pdf.SetLineWidth(opts.PenWidth)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	for _, line := range lines {
		switch {
		case len(line) > 1:
			pdf.MoveTo(line[0].X*opts.Width, line[0].Y*opts.Height)
			for _, p := range line[1:] {
				pdf.LineTo(p.X*opts.Width, p.Y*opts.Height)
			}
			pdf.DrawPath("D")
		case len(line) == 1:
			pdf.Circle(line[0].X*opts.Width, line[0].Y*opts.Height, opts.PenWidth/2, "F")
		}
	}

	return pdf.Output(w)
}
