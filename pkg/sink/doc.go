// Package sink turns engine frames into files a person can look at.
//
// A sink receives a [engine.Frame] together with the [layout.Set] it was
// computed from and produces one of four formats:
//
//   - JSON: the frame's transforms and morph state, for external renderers
//   - SVG: an orthographic snapshot of the scene
//   - PNG: the same snapshot rasterized with gg and supersampled
//   - WebP: the PNG raster encoded as lossless WebP
//
// All renderers project the scene the same way (see [Project]): entity
// positions are moved into world space by the frame's group rotation, then
// viewed from the auto-rotating camera. Dots are painted far to near.
//
// Basic usage:
//
//	frame := eng.Tick(time.Second / 60)
//	svg := sink.RenderSVG(set, frame, sink.WithSize(800, 800))
//	png, err := sink.RenderPNG(set, frame, sink.WithSupersample(2))
//
// [Render] dispatches on a format name and is what the CLI and the HTTP
// server call. [Writer] adapts a format to the [engine.Sink] interface so a
// running engine can stream snapshots to disk.
package sink
