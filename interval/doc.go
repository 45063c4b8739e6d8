// Package interval implements a spatial point-containment index: a
// flat, start-sorted vector of schema.IntervalEntry records supporting
// find_at(point) queries and flat-array serialization into an image.
package interval
