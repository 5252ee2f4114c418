package assign

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/ironsheep/spectra-mcp/internal/model"
)

// cacheKey identifies a detection by geometry alone. Two detections with the
// same box on the same page always receive the same assignment.
type cacheKey struct {
	box  model.BBox
	page int
}

type cacheEntry struct {
	section string
	color   *model.Color
}

// Stats describes one Cache.AssignAll call.
type Stats struct {
	// Detections is the number of detections processed.
	Detections int `json:"detections"`

	// Served is true when the result was replayed from the cache without
	// running any geometry.
	Served bool `json:"served_from_cache"`

	// Fallback is true when fingerprints matched but at least one detection
	// had no cached entry, forcing a full recompute.
	Fallback bool `json:"fallback"`
}

// Cache memoizes the result of the last full assignment sweep.
//
// The zero value is an empty cache with unset fingerprints. Cache is owned by
// a single project session and is not safe for concurrent use.
type Cache struct {
	entries map[cacheKey]cacheEntry

	sectionsFP   uint64
	detectionsFP uint64
	// fpSet is false until the first sweep and after every Invalidate.
	fpSet bool
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]cacheEntry)}
}

// Len returns the number of cached (bbox, page) entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Invalidate clears every entry and resets both fingerprints so the next
// AssignAll is a full recompute.
func (c *Cache) Invalidate() {
	c.entries = make(map[cacheKey]cacheEntry)
	c.sectionsFP = 0
	c.detectionsFP = 0
	c.fpSet = false
}

// AssignAll assigns every detection, replaying the previous sweep when the
// section and detection fingerprints are unchanged and every detection has a
// cached entry. Otherwise it clears the cache, runs engine.AssignAll and
// stores the new entries and fingerprints.
func (c *Cache) AssignAll(engine Engine, sections []*model.Section, detections []*model.Detection) Stats {
	if c.entries == nil {
		c.entries = make(map[cacheKey]cacheEntry)
	}

	sfp := SectionsFingerprint(sections)
	dfp := DetectionsFingerprint(detections)
	stats := Stats{Detections: len(detections)}

	if c.fpSet && sfp == c.sectionsFP && dfp == c.detectionsFP && len(c.entries) > 0 {
		if c.replay(detections) {
			stats.Served = true
			return stats
		}
		stats.Fallback = true
	}

	c.entries = make(map[cacheKey]cacheEntry, len(detections))
	engine.AssignAll(sections, detections)
	for _, d := range detections {
		c.Record(d)
	}
	c.sectionsFP = sfp
	c.detectionsFP = dfp
	c.fpSet = true
	return stats
}

// Seed adopts the detections' current Section and Color fields as the cached
// sweep for the given lists, without running any geometry. It is used when
// assignments come from storage or from the user rather than the engine.
// When several detections share a (bbox, page) key the last one wins.
func (c *Cache) Seed(sections []*model.Section, detections []*model.Detection) {
	c.entries = make(map[cacheKey]cacheEntry, len(detections))
	for _, d := range detections {
		c.Record(d)
	}
	c.sectionsFP = SectionsFingerprint(sections)
	c.detectionsFP = DetectionsFingerprint(detections)
	c.fpSet = true
}

// Record overwrites the cached entry for d's (bbox, page) with d's current
// Section and Color, so a later replay keeps an explicit edit.
func (c *Cache) Record(d *model.Detection) {
	if c.entries == nil {
		c.entries = make(map[cacheKey]cacheEntry)
	}
	e := cacheEntry{section: d.Section}
	if d.Color != nil {
		col := *d.Color
		e.color = &col
	}
	c.entries[cacheKey{box: d.BBox, page: d.Page}] = e
}

// replay applies cached entries to detections. It is all-or-nothing: if any
// detection is missing from the cache nothing is written and false is
// returned.
func (c *Cache) replay(detections []*model.Detection) bool {
	for _, d := range detections {
		if _, ok := c.entries[cacheKey{box: d.BBox, page: d.Page}]; !ok {
			return false
		}
	}
	for _, d := range detections {
		e := c.entries[cacheKey{box: d.BBox, page: d.Page}]
		d.Section = e.section
		if e.color != nil {
			col := *e.color
			d.Color = &col
		} else {
			d.Color = nil
		}
	}
	return true
}

// SectionsFingerprint hashes each section's (name, polyline count) in list
// order.
func SectionsFingerprint(sections []*model.Section) uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 64)
	for _, s := range sections {
		buf = buf[:0]
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s.Name)))
		buf = append(buf, s.Name...)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s.Polylines)))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

// DetectionsFingerprint hashes each detection's (bbox, page) in list order.
func DetectionsFingerprint(detections []*model.Detection) uint64 {
	h := xxhash.New()
	buf := make([]byte, 0, 40)
	for _, d := range detections {
		buf = buf[:0]
		for _, v := range [5]int{d.BBox.X1, d.BBox.Y1, d.BBox.X2, d.BBox.Y2, d.Page} {
			buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(v)))
		}
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}
