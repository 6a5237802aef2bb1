// Package pkg provides the core libraries for Morphtree, a gesture-driven
// particle tree.
//
// # Overview
//
// Morphtree keeps a procedurally generated Christmas tree of foliage
// particles, ornaments, a star topper, photo frames and a halo ribbon. A
// single control value blends every entity between its formed position in
// the tree and a dispersed position in a cloud around it. Hand gestures set
// the value's target: a pinch re-forms the tree, an open hand scatters it,
// and the hand's position steers the scattered cloud.
//
// # Architecture
//
// The data flow for one frame:
//
//	hand landmarks ([gesture] Tracker)
//	         ↓
//	    [gesture] Sampler classifies them into a control signal
//	         ↓
//	    [morph] State eases the control value toward its target
//	         ↓
//	    [engine] ticks: group rotation, camera, [blend] per entity
//	         ↓
//	    [sink] renders the frame (SVG, PNG, WebP, JSON)
//
// # Quick Start
//
//	set, _ := layout.Build(layout.DefaultOptions())
//	state := morph.NewState(morph.Options{})
//	eng := engine.New(set, state, engine.Options{})
//
//	state.Publish(gesture.Classify(gesture.SyntheticHand(gesture.KindClosed, 0.5, 0.5)))
//	frame := eng.Tick(time.Second / 60)
//	svg := sink.RenderSVG(set, frame)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [morph] - The shared interaction state: control value, target, pointer and
// the smoothing step. Gesture writers and the frame loop meet here.
//
// [gesture] - Hand landmarks, pinch classification, trackers (live, scripted,
// replayed) and the sampler that publishes signals at a fixed cadence.
//
// [layout] - Deterministic generators for every entity category. A layout
// depends only on its seed and counts.
//
// [blend] - Per-category blend rules: lagged interpolation, pointer parallax,
// hover bob and photo scaling.
//
// [engine] - The frame loop. Owns group rotation, auto-rotation and photo
// focus, and turns a state snapshot into per-entity transforms.
//
// ## Output
//
// [sink] - Frame renderers. SVG is written directly, rasters are painted
// with gg and downscaled, WebP is encoded natively.
//
// [server] - HTTP transport. A browser hand tracker posts landmarks; status,
// frames and snapshots are served back.
//
// ## Infrastructure
//
// [cache] - Layout and snapshot cache with file, Redis and null backends.
//
// [trace] - Recorded gesture sequences with file and MongoDB stores.
//
// [config] - TOML configuration with flag overrides and XDG paths.
//
// [errors] - Coded errors with user-facing messages and HTTP mapping.
//
// [observability] - Hooks for engine, cache and HTTP events.
//
// [buildinfo] - Version information stamped at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/engine/...     # Specific package
//	go test -run Example ./...   # Examples only
//
// [morph]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/morph
// [gesture]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/gesture
// [layout]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/layout
// [blend]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/blend
// [engine]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/engine
// [sink]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/sink
// [server]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/cache
// [trace]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/trace
// [config]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/morphtree/pkg/buildinfo
package pkg
