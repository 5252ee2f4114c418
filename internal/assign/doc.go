// Package assign decides which isolatable section owns each detection.
//
// # Assignment Rule
//
// A detection belongs to the most recently added section any of whose
// polylines crosses or touches the detection's bounding box. Sections are
// walked from the end of the list to the start, so a finer section drawn over
// an older coarse one wins without explicit z-order management. Polylines on
// a different page than the detection are ignored; a detection with no page
// (page 0) is tested against every page. When nothing matches the detection
// is model.Unassigned.
//
// Before any segment test the detection box is checked against the section's
// cached bounding box and non-overlapping sections are skipped. The cached
// box always covers every polyline point, so the pre-filter never changes a
// result; AssignBruteForce exists to prove that.
//
// # Caching
//
// Cache memoizes a full sweep keyed by (bbox, page). It compares coarse
// fingerprints of the section list (name, polyline count) and detection list
// (bbox, page) to decide whether the previous sweep can be replayed. The
// fingerprints are a cheap filter, not a guarantee: callers must call
// Invalidate after every real mutation of section geometry, section list
// membership or order, section line size or color, and detection geometry or
// membership. Without that call a replayed result may be stale.
//
// # Thread Safety
//
// Nothing in this package locks. Engine is stateless, but Cache and the
// detections it mutates must only be used from one goroutine.
package assign
