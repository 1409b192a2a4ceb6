// Package domain models the inputs and output of the radar renderer.
//
// # Inputs
//
// A refresh produces one [RenderInput]: a [PrecipitationRaster] of normalized
// intensities and a list of [Feature] values describing the map around the
// requested location. Both are assembled by adapters outside the renderer.
//
// Precipitation tiles arrive as grayscale-convertible PNGs. Gray levels are
// divided by 100 and clipped to [0,1], so a gray value of 50 is intensity 0.5
// and anything at or above 100 saturates.
//
// Vector features come from an Overpass query. The tag vocabulary maps onto
// feature variants as follows:
//
//	highway=motorway|trunk|primary|secondary|tertiary (+ _link)  → Road
//	natural=water                                                 → WaterPolygon
//	waterway=river|stream|canal                                   → WaterLine
//	place=island|islet, natural=land                              → LandCutout
//	landuse=port|landfill                                         → LandCutout
//	landuse=residential|commercial|industrial|retail              → LandUseArea (urban)
//	landuse=forest|meadow|grass, leisure=park|nature_reserve,
//	natural=wood                                                  → LandUseArea (nature)
//	place=city|town (node with name)                              → PlaceLabel
//
// # Geometry
//
// Geographic points use [orb.Point], which stores longitude first:
// orb.Point{lon, lat}. Rings are closed when the first and last points are
// equal; polylines are open.
//
// # Output
//
// The renderer produces a [Grid]: one [Cell] per viewport position holding a
// glyph and a [Style]. Styles form a closed set with a fixed precedence:
//
//	label > road > water/water-fill > precipitation tier > area fill > background
//
// # Zoom
//
// Zoom levels 8 through 13 are supported. Feature queries widen with lower zoom:
// radius = base_radius * 2^(reference_zoom - zoom). See [QueryRadius].
package domain
