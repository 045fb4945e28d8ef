package render

import (
	"image/color"
	"sync/atomic"

	"go.uber.org/zap"

	"osero_view/internal/domain/board"
)

var (
	BackgroundColor = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	BoardColor      = color.RGBA{R: 0x00, G: 0x88, B: 0x00, A: 0xff}
	BlackStoneColor = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	WhiteStoneColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Layout holds the fixed geometry of a rendered board, in pixels.
type Layout struct {
	Dimension int
	CellSize  int
	Thickness int
}

var DefaultLayout = Layout{Dimension: board.DefaultDimension, CellSize: 64, Thickness: 2}

func (l Layout) Size() int {
	return l.Dimension * l.CellSize
}

// CountSink receives one stone count after every render.
type CountSink interface {
	SetCount(n int)
}

// Counter is a CountSink that remembers the last value.
type Counter struct {
	v atomic.Int64
}

func (c *Counter) SetCount(n int) {
	c.v.Store(int64(n))
}

func (c *Counter) Value() int {
	return int(c.v.Load())
}

type Renderer struct {
	layout Layout
	black  CountSink
	white  CountSink
	log    *zap.SugaredLogger
}

func NewRenderer(layout Layout, black, white CountSink, log *zap.SugaredLogger) *Renderer {
	return &Renderer{
		layout: layout,
		black:  black,
		white:  white,
		log:    log,
	}
}

func (r *Renderer) Layout() Layout {
	return r.layout
}

// Render draws b onto surface and then publishes the stone counts. A surface
// without a 2D context is logged and left alone; counts are still published.
func (r *Renderer) Render(surface Surface, b *board.Board) {
	ctx, err := surface.Context2D()
	if err != nil {
		r.log.Warnw("skipping board render", "error", err)
	} else {
		r.draw(ctx, b)
	}

	count := b.Count()
	r.black.SetCount(count.PlayerA)
	r.white.SetCount(count.PlayerB)
}

func (r *Renderer) draw(ctx Context2D, b *board.Board) {
	size := float64(r.layout.Size())
	cell := float64(r.layout.CellSize)
	t := float64(r.layout.Thickness)
	inner := cell - 2*t

	ctx.SetFillColor(BackgroundColor)
	ctx.FillRect(0, 0, size, size)

	n := b.Dimension()
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			x := float64(col) * cell
			y := float64(row) * cell

			ctx.SetFillColor(BoardColor)
			ctx.FillRect(x+t, y+t, inner, inner)

			switch b.At(col, row) {
			case board.PlayerA:
				ctx.SetFillColor(BlackStoneColor)
			case board.PlayerB:
				ctx.SetFillColor(WhiteStoneColor)
			default:
				continue
			}
			ctx.FillCircle(x+cell/2, y+cell/2, inner/2)
		}
	}
}
