package tagmap

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// HeightTable maps contiguous tag-ID ranges to the floor distance covered
// by one camera pixel at that ceiling height. Tags in different ranges may
// hang at different physical heights and therefore scale differently.
type HeightTable []HeightRange

// NewHeightTable validates and orders a set of height ranges.
func NewHeightTable(ranges []HeightRange) (HeightTable, error) {
	table := make(HeightTable, len(ranges))
	copy(table, ranges)
	sort.Slice(table, func(i, j int) bool {
		return table[i].FirstID < table[j].FirstID
	})

	for i, r := range table {
		if r.FirstID > r.LastID {
			return nil, fmt.Errorf("tag height range [%d..%d] is inverted", r.FirstID, r.LastID)
		}
		if r.DistancePerPixel <= 0 {
			return nil, fmt.Errorf("tag height range [%d..%d]: distancePerPixel must be positive, got %g",
				r.FirstID, r.LastID, r.DistancePerPixel)
		}
		if i > 0 && r.FirstID <= table[i-1].LastID {
			return nil, fmt.Errorf("tag height ranges [%d..%d] and [%d..%d] overlap",
				table[i-1].FirstID, table[i-1].LastID, r.FirstID, r.LastID)
		}
	}
	return table, nil
}

// DistancePerPixel returns the scale factor for the given tag ID, or 0
// when no range covers it.
func (t HeightTable) DistancePerPixel(id TagID) float64 {
	for _, r := range t {
		if r.FirstID <= id && id <= r.LastID {
			return r.DistancePerPixel
		}
	}
	return 0
}

// LoadHeightTable reads a standalone YAML height-table file: a top-level
// list of {firstId, lastId, distancePerPixel} entries.
func LoadHeightTable(path string) (HeightTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tag height file: %w", err)
	}

	var ranges []HeightRange
	if err := yaml.Unmarshal(data, &ranges); err != nil {
		return nil, fmt.Errorf("parsing tag height YAML: %w", err)
	}
	return NewHeightTable(ranges)
}
