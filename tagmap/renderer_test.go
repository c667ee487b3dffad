package tagmap

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestRasterRenderer_Render(t *testing.T) {
	m := rebuiltTestMap(t)
	r := NewRasterRenderer(m)
	r.Scale = 10 // floor units are small in the fixture

	img, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 2*r.Padding || bounds.Dy() <= 2*r.Padding {
		t.Errorf("image %dx%d barely larger than padding", bounds.Dx(), bounds.Dy())
	}

	// The tree arcs should have left some red pixels behind.
	tree := color.RGBA{R: 255, A: 255}
	found := false
	for y := bounds.Min.Y; y < bounds.Max.Y && !found; y++ {
		for x := bounds.Min.X; x < bounds.Max.X && !found; x++ {
			if img.RGBAAt(x, y) == tree {
				found = true
			}
		}
	}
	if !found {
		t.Error("no tree-arc pixels drawn")
	}
}

func TestRasterRenderer_EmptyMap(t *testing.T) {
	r := NewRasterRenderer(NewMap(nil))
	if _, err := r.Render(); err == nil {
		t.Error("rendering an empty map should error")
	}
}

func TestRasterRenderer_SavePNG(t *testing.T) {
	m := rebuiltTestMap(t)
	r := NewRasterRenderer(m)
	r.Scale = 10

	path := filepath.Join(t.TempDir(), "map.png")
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// PNG signature.
	if len(data) < 8 || data[0] != 0x89 || string(data[1:4]) != "PNG" {
		t.Error("output is not a PNG file")
	}
}
