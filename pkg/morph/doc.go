// Package morph holds the shared control state of the ornament display.
//
// A single control value, current, blends every visual entity between its
// dispersed layout (0) and its formed tree layout (1). The gesture sampler
// publishes a [Signal] carrying the value current should approach; the frame
// tick advances current toward it with exponential smoothing.
//
// # Ownership
//
// [State] is an explicitly owned object: the engine creates it and passes it
// to the sampler and to every per-frame update. There is no package-level
// state. Two writers touch disjoint fields:
//
//   - the sampler calls [State.Publish] (signal: target, pointer, activity)
//   - the tick calls [State.Step] (current)
//
// Both fields are stored atomically, so readers on any goroutine observe the
// latest published value. A read that is one frame stale is expected.
//
// # Smoothing
//
// [Smooth] is a linear interpolation toward the target by a fixed fraction
// alpha per frame. It is monotonic, never overshoots, and never leaves [0,1]
// when its inputs are in range. With alpha 0.05 at 60 fps the control value
// covers 95% of a full transition in about one second.
//
//	st := morph.NewState(morph.Options{})
//	st.Publish(morph.Signal{Target: 0, Active: true})
//	for range 60 {
//	    st.Step()
//	}
//	fmt.Println(st.Formed()) // false
package morph
