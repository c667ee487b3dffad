package tagmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// DefaultMapFile is the default path for the persisted map.
const DefaultMapFile = "fiducials-map.xml"

// arcGoodnessSentinel is the historical on-wire placeholder for "no real
// measurement yet". In memory absence is explicit (Arc.Measured); the
// sentinel survives only here, for compatibility with existing map files.
const arcGoodnessSentinel = 123456789.0

// xmlMap is the wire form of a Map. Twists are stored in degrees and
// converted to radians on load.
type xmlMap struct {
	XMLName   xml.Name `xml:"Map"`
	TagsCount int      `xml:"Tags_Count,attr"`
	ArcsCount int      `xml:"Arcs_Count,attr"`
	Tags      []xmlTag `xml:"Tag"`
	Arcs      []xmlArc `xml:"Arc"`
}

type xmlTag struct {
	ID       TagID   `xml:"Id,attr"`
	Diagonal float64 `xml:"Diagonal,attr"`
	Twist    float64 `xml:"Twist,attr"` // degrees
	X        float64 `xml:"X,attr"`
	Y        float64 `xml:"Y,attr"`
	HopCount int     `xml:"Hop_Count,attr"`
}

type xmlArc struct {
	FromTagID TagID   `xml:"From_Tag_Id,attr"`
	FromTwist float64 `xml:"From_Twist,attr"` // degrees
	Distance  float64 `xml:"Distance,attr"`
	ToTagID   TagID   `xml:"To_Tag_Id,attr"`
	ToTwist   float64 `xml:"To_Twist,attr"` // degrees
	Goodness  float64 `xml:"Goodness,attr"`
	InTree    int     `xml:"In_Tree,attr"`
}

// Write serializes the map to w. Both tags and arcs are written pre-sorted
// so output is deterministic.
func (m *Map) Write(w io.Writer) error {
	m.Sort()

	doc := xmlMap{
		TagsCount: len(m.allTags),
		ArcsCount: len(m.allArcs),
		Tags:      make([]xmlTag, 0, len(m.allTags)),
		Arcs:      make([]xmlArc, 0, len(m.allArcs)),
	}

	for _, tag := range m.allTags {
		doc.Tags = append(doc.Tags, xmlTag{
			ID:       tag.ID,
			Diagonal: tag.Diagonal,
			Twist:    degrees(tag.Twist),
			X:        tag.X,
			Y:        tag.Y,
			HopCount: tag.HopCount,
		})
	}

	for _, arc := range m.allArcs {
		goodness := arc.Goodness
		if !arc.Measured {
			goodness = arcGoodnessSentinel
		}
		inTree := 0
		if arc.InTree {
			inTree = 1
		}
		doc.Arcs = append(doc.Arcs, xmlArc{
			FromTagID: arc.From.ID,
			FromTwist: degrees(arc.FromTwist),
			Distance:  arc.Distance,
			ToTagID:   arc.To.ID,
			ToTwist:   degrees(arc.ToTwist),
			Goodness:  goodness,
			InTree:    inTree,
		})
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", " ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding map XML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding map XML: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Save writes the map to the named file.
func (m *Map) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map file: %w", err)
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing map file: %w", err)
	}
	return nil
}

// Read parses a persisted map from r. Any malformed element, unknown
// structure, or declared-vs-actual count mismatch aborts the load; there is
// no partial recovery.
func Read(r io.Reader, heights HeightTable) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}

	var doc xmlMap
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing map XML: %w", err)
	}

	if doc.TagsCount != len(doc.Tags) {
		return nil, fmt.Errorf("map declares %d tags but contains %d", doc.TagsCount, len(doc.Tags))
	}
	if doc.ArcsCount != len(doc.Arcs) {
		return nil, fmt.Errorf("map declares %d arcs but contains %d", doc.ArcsCount, len(doc.Arcs))
	}

	m := NewMap(heights)

	for _, xt := range doc.Tags {
		tag := m.TagLookup(xt.ID)
		tag.SetPose(xt.X, xt.Y, radians(xt.Twist))
		tag.Diagonal = xt.Diagonal
		tag.HopCount = xt.HopCount
	}

	for _, xa := range doc.Arcs {
		if xa.FromTagID >= xa.ToTagID {
			return nil, fmt.Errorf("arc (%d,%d) is not in canonical order", xa.FromTagID, xa.ToTagID)
		}
		key := pairKey(xa.FromTagID, xa.ToTagID)
		if _, ok := m.arcs[key]; ok {
			return nil, fmt.Errorf("duplicate arc for tag pair (%d,%d)", xa.FromTagID, xa.ToTagID)
		}

		from := m.TagLookup(xa.FromTagID)
		to := m.TagLookup(xa.ToTagID)
		arc := NewArc(from, radians(xa.FromTwist), xa.Distance, to, radians(xa.ToTwist), xa.Goodness)
		arc.Measured = xa.Goodness < arcGoodnessSentinel
		arc.InTree = xa.InTree != 0
		m.arcs[key] = arc
		m.allArcs = append(m.allArcs, arc)
	}

	m.dirty = true
	return m, nil
}

// Load reads a persisted map from the named file.
func Load(path string, heights HeightTable) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer f.Close()
	return Read(f, heights)
}
