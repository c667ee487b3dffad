package tagmap

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// maxTrackedFixes bounds the robot fix trail kept for rendering.
const maxTrackedFixes = 256

// Tracker owns the live map on behalf of the service. The core Map is
// single-threaded; Tracker serializes refinement, rebuilds, rendering, and
// persistence behind one mutex so MQTT callbacks and HTTP handlers can
// share it.
type Tracker struct {
	mu      sync.Mutex
	m       *Map
	mapFile string // persisted map path; empty disables persistence
	fixes   []LocationFix
}

// NewTracker wraps a map for shared use. If mapFile names an existing
// persisted map, it is loaded; a map file that does not exist yet means a
// fresh start from the given (usually empty) map. Any other load failure is
// an error: starting empty over a malformed map file would let the next
// SaveMap overwrite it.
func NewTracker(m *Map, mapFile string, heights HeightTable) (*Tracker, error) {
	if mapFile != "" {
		loaded, err := Load(mapFile, heights)
		switch {
		case err == nil:
			log.Printf("Loaded map from %s: %d tags, %d arcs",
				mapFile, loaded.TagCount(), loaded.ArcCount())
			m = loaded
		case errors.Is(err, os.ErrNotExist):
			log.Printf("No persisted map at %s, starting empty", mapFile)
		default:
			return nil, fmt.Errorf("loading persisted map: %w", err)
		}
	}
	return &Tracker{m: m, mapFile: mapFile}, nil
}

// HandleFrame refines the map from one camera frame and returns the number
// of arcs updated.
func (t *Tracker) HandleFrame(frame *Frame) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.RefineFrame(*frame)
}

// Rebuild runs a spanning-tree rebuild if the map is dirty. Returns true
// when a rebuild actually ran.
func (t *Tracker) Rebuild() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.m.Dirty() {
		return false
	}
	t.m.Rebuild()
	return true
}

// AddFix appends a robot location fix to the bounded trail.
func (t *Tracker) AddFix(fix LocationFix) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fixes = append(t.fixes, fix)
	if len(t.fixes) > maxTrackedFixes {
		t.fixes = t.fixes[len(t.fixes)-maxTrackedFixes:]
	}
}

// Fixes returns a copy of the current fix trail.
func (t *Tracker) Fixes() []LocationFix {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]LocationFix, len(t.fixes))
	copy(out, t.fixes)
	return out
}

// Counts returns the current tag and arc counts.
func (t *Tracker) Counts() (tags, arcs int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.TagCount(), t.m.ArcCount()
}

// Tags returns a snapshot of all tags, sorted by ID.
func (t *Tracker) Tags() []Tag {
	t.mu.Lock()
	defer t.mu.Unlock()
	tags := t.m.Tags()
	out := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		snap := *tag
		snap.Arcs = nil
		out = append(out, snap)
	}
	return out
}

// RenderSVG renders the current map, with the fix trail overlay, as SVG.
func (t *Tracker) RenderSVG(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := NewVectorRenderer(t.m)
	r.Fixes = t.fixes
	return r.RenderToSVG(w)
}

// RenderPNG renders the current map, with the fix trail overlay, as PNG.
func (t *Tracker) RenderPNG(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := NewVectorRenderer(t.m)
	r.Fixes = t.fixes
	return r.RenderToPNG(w)
}

// WriteXML writes the current map in the persisted XML format.
func (t *Tracker) WriteXML(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.Write(w)
}

// SaveMap persists the current map to the configured map file. It is a
// no-op when persistence is disabled.
func (t *Tracker) SaveMap() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mapFile == "" {
		return nil
	}
	return t.m.Save(t.mapFile)
}

// PublishPoses publishes routed tag poses through the given publisher.
func (t *Tracker) PublishPoses(p *Publisher) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return p.PublishMap(t.m)
}
