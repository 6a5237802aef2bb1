// Package layout places every visual entity of the display at two fixed
// positions: its formed (tree) position and its dispersed (chaos) position.
//
// Layouts are built once from [Options] by [Build] and are immutable
// afterwards. All randomness comes from seeded PCG streams, one per
// [Category], so the same seed and counts always produce the same [Set] and
// changing one category's count never perturbs another category.
//
// # Generators
//
//   - Foliage particles fill a cone volume ([ConeVolume]).
//   - Ornaments follow a golden-angle spiral on the cone surface
//     ([Phyllotaxis]) so they look evenly spread without clumping.
//   - Photo frames follow a coarser spiral ([PhotoSpiral]).
//   - The topper sits fixed above the apex.
//   - Halo strands have no fixed formed position; [RibbonPoint] evaluates
//     them against the elapsed time.
//
// Coordinates are world units with y pointing up; the tree apex is at y = 9
// and its base at y = -6.
package layout
