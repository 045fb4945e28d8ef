package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/jung-kurt/gofpdf"

	apperrors "osero_view/internal/errors"
)

// Context2D is the set of drawing primitives the renderer needs.
type Context2D interface {
	SetFillColor(c color.Color)
	FillRect(x, y, w, h float64)
	FillCircle(cx, cy, r float64)
}

// Surface is anything that may be able to hand out a 2D context.
type Surface interface {
	Context2D() (Context2D, error)
}

// Canvas is an in-memory raster surface.
type Canvas struct {
	dc *gg.Context
}

func NewCanvas(width, height int) *Canvas {
	if width <= 0 || height <= 0 {
		return &Canvas{}
	}
	return &Canvas{dc: gg.NewContext(width, height)}
}

func (c *Canvas) Context2D() (Context2D, error) {
	if c == nil || c.dc == nil {
		return nil, fmt.Errorf("%w: canvas has no pixels", apperrors.ErrCapabilityUnavailable)
	}
	return rasterContext{dc: c.dc}, nil
}

func (c *Canvas) Image() image.Image {
	if c.dc == nil {
		return nil
	}
	return c.dc.Image()
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.dc == nil {
		return apperrors.ErrCapabilityUnavailable
	}
	return c.dc.EncodePNG(w)
}

type rasterContext struct {
	dc *gg.Context
}

func (r rasterContext) SetFillColor(c color.Color) {
	r.dc.SetColor(c)
}

func (r rasterContext) FillRect(x, y, w, h float64) {
	r.dc.DrawRectangle(x, y, w, h)
	r.dc.Fill()
}

func (r rasterContext) FillCircle(cx, cy, radius float64) {
	r.dc.DrawCircle(cx, cy, radius)
	r.dc.Fill()
}

// Document is a single-page PDF surface measured in points.
type Document struct {
	pdf *gofpdf.Fpdf
}

func NewDocument(width, height float64) *Document {
	if width <= 0 || height <= 0 {
		return &Document{}
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return &Document{pdf: pdf}
}

func (d *Document) Context2D() (Context2D, error) {
	if d == nil || d.pdf == nil {
		return nil, fmt.Errorf("%w: document has no page", apperrors.ErrCapabilityUnavailable)
	}
	if d.pdf.Err() {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCapabilityUnavailable, d.pdf.Error())
	}
	return pdfContext{pdf: d.pdf}, nil
}

// Output writes the finished document to w. The document is closed afterwards.
func (d *Document) Output(w io.Writer) error {
	if d.pdf == nil {
		return apperrors.ErrCapabilityUnavailable
	}
	return d.pdf.Output(w)
}

type pdfContext struct {
	pdf *gofpdf.Fpdf
}

func (p pdfContext) SetFillColor(c color.Color) {
	r, g, b, _ := c.RGBA()
	p.pdf.SetFillColor(int(r>>8), int(g>>8), int(b>>8))
}

func (p pdfContext) FillRect(x, y, w, h float64) {
	p.pdf.Rect(x, y, w, h, "F")
}

func (p pdfContext) FillCircle(cx, cy, radius float64) {
	p.pdf.Circle(cx, cy, radius, "F")
}
