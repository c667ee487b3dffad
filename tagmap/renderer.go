package tagmap

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterRenderer draws the tag/arc graph directly into an RGBA image with
// tag-ID labels. It backs the HTTP floorplan endpoint, where a quick
// labeled bitmap is handier than the vector export.
type RasterRenderer struct {
	Map     *Map
	Scale   float64 // pixels per floor unit
	Padding int     // image padding in pixels
}

// NewRasterRenderer creates a raster renderer with default settings.
func NewRasterRenderer(m *Map) *RasterRenderer {
	return &RasterRenderer{
		Map:     m,
		Scale:   0.25,
		Padding: 30,
	}
}

// Render draws the graph into a new image. Tree arcs are red, cycle arcs
// green, tags black squares with their ID labeled beside them.
func (r *RasterRenderer) Render() (*image.RGBA, error) {
	tags := r.Map.Tags()
	if len(tags) == 0 {
		return nil, fmt.Errorf("no tags to render")
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, tag := range tags {
		minX = math.Min(minX, tag.X)
		minY = math.Min(minY, tag.Y)
		maxX = math.Max(maxX, tag.X)
		maxY = math.Max(maxY, tag.Y)
	}

	width := int((maxX-minX)*r.Scale) + 2*r.Padding
	height := int((maxY-minY)*r.Scale) + 2*r.Padding
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// White background.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Image y grows downward; flip so the floor frame reads cartesian.
	toImage := func(x, y float64) (int, int) {
		px := int((x-minX)*r.Scale) + r.Padding
		py := height - (int((y-minY)*r.Scale) + r.Padding)
		return px, py
	}

	treeColor := color.RGBA{R: 255, A: 255}
	cycleColor := color.RGBA{G: 128, A: 255}
	tagColor := color.RGBA{A: 255}

	for _, arc := range r.Map.Arcs() {
		c := cycleColor
		if arc.InTree {
			c = treeColor
		}
		x1, y1 := toImage(arc.From.X, arc.From.Y)
		x2, y2 := toImage(arc.To.X, arc.To.Y)
		drawLine(img, x1, y1, x2, y2, c)
	}

	for _, tag := range tags {
		cx, cy := toImage(tag.X, tag.Y)
		for dy := -3; dy <= 3; dy++ {
			for dx := -3; dx <= 3; dx++ {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < width && y >= 0 && y < height {
					img.Set(x, y, tagColor)
				}
			}
		}
		drawText(img, cx+6, cy-6, fmt.Sprintf("%d", tag.ID), tagColor)
	}

	return img, nil
}

// SavePNG renders the graph and writes it to the named file.
func (r *RasterRenderer) SavePNG(path string) error {
	img, err := r.Render()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating PNG file: %w", err)
	}
	defer f.Close()
	return png.Encode(f, img)
}

// drawLine draws a line using simple DDA interpolation.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := x2 - x1
	dy := y2 - y1
	steps := maxInt(absInt(dx), absInt(dy))
	if steps == 0 {
		img.Set(x1, y1, c)
		return
	}
	for i := 0; i <= steps; i++ {
		x := x1 + dx*i/steps
		y := y1 + dy*i/steps
		if x >= 0 && x < img.Bounds().Max.X && y >= 0 && y < img.Bounds().Max.Y {
			img.Set(x, y, c)
		}
	}
}

// drawText renders text onto an image at the specified position.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
