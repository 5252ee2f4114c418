// Package project holds the editing session for one drawing: its sections,
// its detections and the assignment cache that ties them together.
//
// # Mutations
//
// Every geometric change (adding, editing or deleting polylines, moving or
// resizing boxes, adding or removing detections, renaming or deleting
// sections) invalidates the assignment cache and re-runs assignment before
// returning, so Detections always reflects the current sections. Explicit
// edits of a detection's section, category, count or line size do not touch
// geometry and keep the user's choice until the next geometric change.
//
// # Persistence
//
// Projects are stored as JSON. Documents are validated against an embedded
// JSON Schema before decoding, and loading always starts from an invalidated
// cache.
//
// # Concurrency
//
// A Project is owned by one goroutine. None of its methods lock.
package project
