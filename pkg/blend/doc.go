// Package blend turns the shared control value into per-entity transforms.
//
// Each frame, every entity's target position is the interpolation between
// its dispersed and formed positions (see [layout.Entity]). Ornaments, the
// topper and photo frames then chase that target with a second smoothing
// stage ([Approach]) and derive scale and rotation from the control value.
// Foliage particles use the direct mix with no second stage.
//
// An [Animator] owns the per-entity [Body] state for one [layout.Set] and
// dispatches each entity to the [Rule] of its category. [RibbonAnimator]
// evaluates the halo ribbon, which keeps its own interaction value.
//
// Rules read the frame's shared [Tick]; nothing in this package reads a
// clock.
package blend
