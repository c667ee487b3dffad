package tagmap

import "testing"

// ---------------------------------------------------------------------------
// TagLookup
// ---------------------------------------------------------------------------

func TestMap_TagLookup(t *testing.T) {
	heights, err := NewHeightTable([]HeightRange{
		{FirstID: 0, LastID: 10, DistancePerPixel: 0.02},
	})
	if err != nil {
		t.Fatalf("NewHeightTable: %v", err)
	}
	m := NewMap(heights)

	tag := m.TagLookup(5)
	if tag.ID != 5 {
		t.Fatalf("tag ID = %d, want 5", tag.ID)
	}
	if tag.DistancePerPixel != 0.02 {
		t.Errorf("DistancePerPixel = %g, want 0.02 from the height table", tag.DistancePerPixel)
	}
	if tag.Initialized {
		t.Error("fresh tag should not be initialized")
	}
	if !m.Dirty() {
		t.Error("creating a tag should mark the map dirty")
	}

	again := m.TagLookup(5)
	if again != tag {
		t.Error("second lookup should return the same tag")
	}
	if m.TagCount() != 1 {
		t.Errorf("TagCount = %d, want 1", m.TagCount())
	}
}

func TestMap_TagLookup_UncoveredID(t *testing.T) {
	heights, _ := NewHeightTable([]HeightRange{
		{FirstID: 0, LastID: 10, DistancePerPixel: 0.02},
	})
	m := NewMap(heights)

	tag := m.TagLookup(99)
	if tag.DistancePerPixel != 0 {
		t.Errorf("uncovered ID should get zero calibration, got %g", tag.DistancePerPixel)
	}
}

// ---------------------------------------------------------------------------
// ArcLookup
// ---------------------------------------------------------------------------

func TestMap_ArcLookup(t *testing.T) {
	m := NewMap(nil)
	a := m.TagLookup(1)
	b := m.TagLookup(2)

	arc := m.ArcLookup(a, b)
	if arc.Measured {
		t.Error("lookup-created arc should be unmeasured")
	}
	if arc.From != a || arc.To != b {
		t.Errorf("arc endpoints = (%d,%d), want (1,2)", arc.From.ID, arc.To.ID)
	}

	// Same pair, either order, is the same arc.
	if m.ArcLookup(b, a) != arc {
		t.Error("reversed-order lookup should return the existing arc")
	}
	if m.ArcLookup(a, b) != arc {
		t.Error("repeated lookup should return the existing arc")
	}
	if m.ArcCount() != 1 {
		t.Errorf("ArcCount = %d, want 1", m.ArcCount())
	}
}

// ---------------------------------------------------------------------------
// Sort determinism
// ---------------------------------------------------------------------------

func TestMap_Sort(t *testing.T) {
	m := NewMap(nil)
	// Insert out of order.
	t9 := m.TagLookup(9)
	t2 := m.TagLookup(2)
	t5 := m.TagLookup(5)
	m.ArcLookup(t9, t5)
	m.ArcLookup(t5, t2)
	m.ArcLookup(t2, t9)

	tags := m.Tags()
	for i := 1; i < len(tags); i++ {
		if tags[i-1].ID >= tags[i].ID {
			t.Fatalf("tags not sorted by ID: %d before %d", tags[i-1].ID, tags[i].ID)
		}
	}

	arcs := m.Arcs()
	for i := 1; i < len(arcs); i++ {
		if arcs[i-1].Compare(arcs[i]) >= 0 {
			t.Fatalf("arcs not in canonical order at index %d", i)
		}
	}
}

// ---------------------------------------------------------------------------
// Compare / Equal
// ---------------------------------------------------------------------------

func TestMap_Equal(t *testing.T) {
	build := func(ids []TagID, pairs [][2]TagID) *Map {
		m := NewMap(nil)
		for _, id := range ids {
			m.TagLookup(id)
		}
		for _, p := range pairs {
			m.ArcLookup(m.TagLookup(p[0]), m.TagLookup(p[1]))
		}
		return m
	}

	base := build([]TagID{1, 2, 3}, [][2]TagID{{1, 2}, {2, 3}})

	t.Run("same structure, different insertion order", func(t *testing.T) {
		other := build([]TagID{3, 1, 2}, [][2]TagID{{3, 2}, {2, 1}})
		if !base.Equal(other) {
			t.Error("maps with the same tags and arcs should be equal")
		}
	})

	t.Run("extra tag", func(t *testing.T) {
		other := build([]TagID{1, 2, 3, 4}, [][2]TagID{{1, 2}, {2, 3}})
		if base.Equal(other) {
			t.Error("maps with different tag sets should not be equal")
		}
	})

	t.Run("extra arc", func(t *testing.T) {
		other := build([]TagID{1, 2, 3}, [][2]TagID{{1, 2}, {2, 3}, {1, 3}})
		if base.Equal(other) {
			t.Error("maps with different arc sets should not be equal")
		}
	})
}
