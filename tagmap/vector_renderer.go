package tagmap

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/paulmach/orb"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer renders the tag/arc graph as vector graphics: spanning
// tree arcs in one color, cycle-closing arcs in another, tags as
// twist-indicating squares, plus an optional trail of robot location
// fixes. It reads map state but never mutates it.
type VectorRenderer struct {
	Map   *Map
	Fixes []LocationFix

	Padding    float64           // padding around the graph, floor units
	TagSize    float64           // tag glyph half-diagonal, floor units
	FixSize    float64           // bearing triangle size, floor units
	Resolution canvas.Resolution // PNG output resolution

	TreeColor  color.RGBA // arcs selected into the spanning tree
	CycleColor color.RGBA // arcs closing a cycle
	AxisColor  color.RGBA
	TagColor   color.RGBA
	FixColor   color.RGBA
	TrailColor color.RGBA
}

// NewVectorRenderer creates a renderer with default settings.
func NewVectorRenderer(m *Map) *VectorRenderer {
	return &VectorRenderer{
		Map:        m,
		Padding:    100.0,
		TagSize:    40.0,
		FixSize:    40.0,
		Resolution: canvas.DPI(300),
		TreeColor:  color.RGBA{R: 255, A: 255},
		CycleColor: color.RGBA{G: 128, A: 255},
		AxisColor:  color.RGBA{G: 255, B: 255, A: 255}, // cyan
		TagColor:   color.RGBA{A: 255},
		FixColor:   color.RGBA{A: 255},
		TrailColor: color.RGBA{R: 128, B: 128, A: 255}, // purple
	}
}

// canvasRenderer is the interface both the svg and rasterizer renderers
// implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the map as an SVG to the provided writer.
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	bound, err := r.worldBound()
	if err != nil {
		return err
	}

	width := bound.Right() - bound.Left() + 2*r.Padding
	height := bound.Top() - bound.Bottom() + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, bound)
	return svgRenderer.Close()
}

// RenderToPNG writes the map as a PNG to the provided writer.
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	bound, err := r.worldBound()
	if err != nil {
		return err
	}

	width := bound.Right() - bound.Left() + 2*r.Padding
	height := bound.Top() - bound.Bottom() + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, bound)
	return png.Encode(w, rast)
}

// worldBound accumulates the bounding box of all tag centers and location
// fixes. The axes' origin is always included so the frame origin stays
// visible.
func (r *VectorRenderer) worldBound() (orb.Bound, error) {
	tags := r.Map.Tags()
	if len(tags) == 0 {
		return orb.Bound{}, fmt.Errorf("no tags to render")
	}

	bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0, 0}}
	for _, tag := range tags {
		bound = tag.boundUpdate(bound)
	}
	for _, fix := range r.Fixes {
		bound = bound.Extend(orb.Point{fix.X, fix.Y})
	}
	return bound, nil
}

// renderToCanvas draws the graph onto a canvas renderer (shared logic for
// SVG and PNG). Canvas coordinates are y-up, matching the floor frame, so
// the mapping is a pure translation.
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, bound orb.Bound) {
	width := bound.Right() - bound.Left() + 2*r.Padding
	height := bound.Top() - bound.Bottom() + 2*r.Padding

	toCanvas := func(x, y float64) (float64, float64) {
		return x - bound.Left() + r.Padding, y - bound.Bottom() + r.Padding
	}

	// White background.
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	line := func(x1, y1, x2, y2 float64, c color.RGBA, strokeWidth float64) {
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: canvas.Transparent}
		style.Stroke = canvas.Paint{Color: c}
		style.StrokeWidth = strokeWidth
		p := &canvas.Path{}
		cx1, cy1 := toCanvas(x1, y1)
		cx2, cy2 := toCanvas(x2, y2)
		p.MoveTo(cx1, cy1)
		p.LineTo(cx2, cy2)
		renderer.RenderPath(p, style, canvas.Identity)
	}

	// X/Y axes through the frame origin.
	line(bound.Left(), 0, bound.Right(), 0, r.AxisColor, 2.0)
	line(0, bound.Bottom(), 0, bound.Top(), r.AxisColor, 2.0)

	// Arcs: tree arcs and cycle-closing arcs in their own colors.
	for _, arc := range r.Map.Arcs() {
		c := r.CycleColor
		if arc.InTree {
			c = r.TreeColor
		}
		line(arc.From.X, arc.From.Y, arc.To.X, arc.To.Y, c, 4.0)
	}

	// Tags: a square rotated by the tag twist, with a tick along the
	// tag's own X axis showing the twist direction.
	for _, tag := range r.Map.Tags() {
		half := r.TagSize
		style := canvas.DefaultStyle
		style.Fill = canvas.Paint{Color: canvas.Transparent}
		style.Stroke = canvas.Paint{Color: r.TagColor}
		style.StrokeWidth = 3.0

		p := &canvas.Path{}
		for i := 0; i <= 4; i++ {
			corner := tag.Twist + math.Pi/4 + float64(i)*math.Pi/2
			cx, cy := toCanvas(
				tag.X+half*math.Sqrt2*math.Cos(corner),
				tag.Y+half*math.Sqrt2*math.Sin(corner),
			)
			if i == 0 {
				p.MoveTo(cx, cy)
			} else {
				p.LineTo(cx, cy)
			}
		}
		renderer.RenderPath(p, style, canvas.Identity)

		line(tag.X, tag.Y,
			tag.X+1.5*half*math.Cos(tag.Twist),
			tag.Y+1.5*half*math.Sin(tag.Twist),
			r.TagColor, 3.0)
	}

	// Robot location fixes: one bearing triangle per fix, consecutive
	// fixes joined by a trail segment.
	lastX, lastY := 0.0, 0.0
	for i, fix := range r.Fixes {
		k1 := r.FixSize
		k2 := k1 / 2
		spread := math.Pi * 0.75
		x0 := fix.X + k1*math.Cos(fix.Bearing)
		y0 := fix.Y + k1*math.Sin(fix.Bearing)
		x1 := fix.X + k2*math.Cos(fix.Bearing+spread)
		y1 := fix.Y + k2*math.Sin(fix.Bearing+spread)
		x2 := fix.X + k2*math.Cos(fix.Bearing-spread)
		y2 := fix.Y + k2*math.Sin(fix.Bearing-spread)
		line(x0, y0, x1, y1, r.FixColor, 2.0)
		line(x1, y1, x2, y2, r.FixColor, 2.0)
		line(x2, y2, x0, y0, r.FixColor, 2.0)

		if i > 0 {
			line(lastX, lastY, fix.X, fix.Y, r.TrailColor, 2.0)
		}
		lastX, lastY = fix.X, fix.Y
	}
}
