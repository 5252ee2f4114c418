// Package imaging loads rendered P&ID page images and draws on them.
//
// Page images are produced outside this module, one file per page. A
// PageSource maps 1-indexed page numbers to files, and ImageCache keeps
// decoded images in memory so repeated overlay and crop requests for the
// same page do not hit the disk.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. This is the same space that
// detection boxes and section polylines are stored in. For regions, (x1,y1)
// is inclusive and (x2,y2) is exclusive.
//
// # Overlays
//
// RenderOverlay lightens the page, then draws every section polyline on that
// page in its section color and every detection box in its owner's color.
// Unassigned detections are drawn in red.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Rendering never mutates its input
// image.
package imaging
