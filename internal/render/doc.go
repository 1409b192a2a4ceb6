// Package render turns a precipitation raster and a set of vector map features
// into a fixed-size character grid.
//
// Rendering is synchronous and has no side effects. [Rasterize] draws the
// features in a fixed pass order (water, land cutouts, rivers, land-use areas,
// roads, labels) and [Composite] merges the precipitation raster underneath the
// linear and named features. [Render] runs both.
//
// Geometry that cannot be drawn (degenerate bounds, rings of fewer than three
// points, coordinates outside the viewport) is skipped or clipped; nothing in
// this package returns an error.
package render
