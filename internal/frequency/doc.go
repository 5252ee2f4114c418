// Package frequency aggregates leak frequencies per isolatable section.
//
// A Table holds rows of (category, line-size bracket, hole-size buckets)
// loaded from a CSV resource. Compute groups detections by their assigned
// section, resolves each detection's frequency category and effective line
// size, looks up the matching row and sums the buckets multiplied by the
// detection count.
//
// # Lookup Policy
//
// The first row whose inclusive [min_size_mm, max_size_mm] bracket contains
// the line size wins. When none does, the row with the largest max_size_mm
// for the category is used, so oversize lines clamp to the top bracket.
//
// # Errors
//
// A category with no rows, or a detection whose category cannot be mapped,
// fails the whole Compute call with a *LookupError wrapping
// ErrUnknownCategory. A detection with no line size on itself or its section
// fails with ErrNoLineSize. Silently zeroing a bucket would misreport
// safety-relevant totals. Detections whose section name matches no section
// are skipped without error.
package frequency
