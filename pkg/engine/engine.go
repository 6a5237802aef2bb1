// Package engine advances the morph state, the interactive group rotation
// and every entity's transform once per frame.
//
// An [Engine] is the single frame-tick owner: [Engine.Tick] is the only
// caller of [morph.State.Step]. The gesture side runs separately (see
// [gesture.Sampler]); [RunWithSampler] runs both loops together.
//
//	set, _ := layout.Build(layout.DefaultOptions())
//	state := morph.NewState(morph.Options{})
//	eng := engine.New(set, state, engine.Options{})
//	frame := eng.Tick(time.Second / 60)
package engine

import (
	"context"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/matzehuels/morphtree/pkg/blend"
	"github.com/matzehuels/morphtree/pkg/layout"
	"github.com/matzehuels/morphtree/pkg/morph"
	"github.com/matzehuels/morphtree/pkg/observability"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultFPS = 60

	// Group rotation follows the pointer at GroupFollow while dispersed and
	// steered, and settles back at GroupSettle otherwise.
	GroupFollow = 0.1
	GroupSettle = 0.05

	// GroupYawGain and GroupPitchGain map pointer axes to radians.
	GroupYawGain   = 2.0
	GroupPitchGain = 1.5

	// GroupSteerBelow is the control value under which the pointer steers
	// the group.
	GroupSteerBelow = 0.5

	// DefaultAutoRotateSpeed matches an orbit control's speed unit: 1.0 is
	// one revolution per minute.
	DefaultAutoRotateSpeed = 0.8
)

// DefaultCamera is the camera position of the original display.
var DefaultCamera = mgl64.Vec3{0, 4, 18}

// GroupOffset lifts the rotating group so the tree sits centred in view.
var GroupOffset = mgl64.Vec3{0, -2, 0}

// Options configures an [Engine].
type Options struct {
	// FPS is the tick rate used by Run. Zero selects DefaultFPS.
	FPS int

	// Camera is the camera position before auto-rotation. Zero selects
	// DefaultCamera.
	Camera mgl64.Vec3

	// AutoRotateSpeed scales camera orbiting while formed and unsteered.
	// Negative disables auto-rotation; zero selects the default.
	AutoRotateSpeed float64

	// Rules overrides blend rules per category.
	Rules map[layout.Category]blend.Rule

	// Logger receives tick diagnostics at debug level. Nil discards.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Camera == (mgl64.Vec3{}) {
		o.Camera = DefaultCamera
	}
	if o.AutoRotateSpeed == 0 {
		o.AutoRotateSpeed = DefaultAutoRotateSpeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// =============================================================================
// Frame
// =============================================================================

// Frame is everything a renderer needs for one tick. A frame returned by
// Tick shares Transforms and Ribbon with the engine, which overwrites them on
// the next Tick; call Clone to keep a frame longer. Frames from Latest are
// already private copies.
type Frame struct {
	Seq     uint64  `json:"seq"`
	Elapsed float64 `json:"elapsed"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`

	Active     bool          `json:"active"`
	Formed     bool          `json:"formed"`
	AutoRotate bool          `json:"auto_rotate"`
	Status     string        `json:"status"`
	Pointer    morph.Pointer `json:"pointer"`

	// GroupRotation holds Euler angles (x, y, z) applied to the whole scene.
	GroupRotation mgl64.Vec3 `json:"group_rotation"`

	// Camera is the camera position after auto-rotation.
	Camera    mgl64.Vec3 `json:"camera"`
	CameraYaw float64    `json:"camera_yaw"`

	// Transforms are indexed by entity ID.
	Transforms []blend.Transform `json:"transforms,omitempty"`

	// Ribbon holds halo strand positions indexed by strand ID, and
	// RibbonInteraction the halo's own trailing control value.
	Ribbon            []mgl64.Vec3 `json:"ribbon,omitempty"`
	RibbonInteraction float64      `json:"ribbon_interaction"`
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Transforms = append([]blend.Transform(nil), f.Transforms...)
	c.Ribbon = append([]mgl64.Vec3(nil), f.Ribbon...)
	return &c
}

// Group returns the rotation applied to the whole scene as a quaternion.
func (f *Frame) Group() mgl64.Quat {
	return blend.Euler(f.GroupRotation)
}

// World maps a group-local point into world space: rotate by the group
// rotation, then apply GroupOffset.
func (f *Frame) World(p mgl64.Vec3) mgl64.Vec3 {
	return f.Group().Rotate(p).Add(GroupOffset)
}

// Sink is the rendering collaborator. Consume must not retain f's slices
// past the call unless it copies them.
type Sink interface {
	Consume(ctx context.Context, f *Frame) error
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(ctx context.Context, f *Frame) error

// Consume calls fn.
func (fn SinkFunc) Consume(ctx context.Context, f *Frame) error { return fn(ctx, f) }

// =============================================================================
// Engine
// =============================================================================

// Engine owns the per-frame simulation. Tick is serialized internally;
// Latest, LatestSeq and State may be read from any goroutine.
type Engine struct {
	opts   Options
	state  *morph.State
	set    *layout.Set
	anim   *blend.Animator
	ribbon *blend.RibbonAnimator
	focus  *Focus
	logger *log.Logger

	mu        sync.Mutex
	seq       uint64
	elapsed   float64
	rotation  mgl64.Vec3
	cameraYaw float64

	last    *Frame // shares the animator buffers; guarded by mu
	lastSeq atomic.Uint64
}

// New creates an engine animating set from state. Bodies start at the
// state's current control value.
func New(set *layout.Set, state *morph.State, opts Options) *Engine {
	opts.setDefaults()
	current := state.Current()
	return &Engine{
		opts:   opts,
		state:  state,
		set:    set,
		anim:   blend.NewAnimator(set, current, opts.Rules),
		ribbon: blend.NewRibbonAnimator(set, current),
		focus:  NewFocus(set.Count(layout.Photo)),
		logger: opts.Logger,
	}
}

// State returns the shared morph state.
func (e *Engine) State() *morph.State { return e.state }

// Set returns the layout being animated.
func (e *Engine) Set() *layout.Set { return e.set }

// Focus returns the photo focus cursor.
func (e *Engine) Focus() *Focus { return e.focus }

// FPS returns the tick rate used by Run.
func (e *Engine) FPS() int { return e.opts.FPS }

// Latest returns a copy of the most recent frame, or nil before the first
// tick. It waits for a running Tick to finish.
func (e *Engine) Latest() *Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return nil
	}
	return e.last.Clone()
}

// LatestSeq returns the sequence number of the most recent frame without
// copying it; zero before the first tick.
func (e *Engine) LatestSeq() uint64 { return e.lastSeq.Load() }

// Tick advances the simulation by dt and returns the new frame. Apart from
// the frame header nothing is allocated: the slices are the animator's own.
func (e *Engine) Tick(dt time.Duration) *Frame {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	if dt < 0 {
		dt = 0
	}
	e.seq++
	e.elapsed += dt.Seconds()

	current := e.state.Step()
	snap := e.state.Snapshot()

	e.stepGroup(snap)
	if snap.AutoRotate && e.opts.AutoRotateSpeed > 0 {
		e.cameraYaw = math.Mod(e.cameraYaw+dt.Seconds()*2*math.Pi/60*e.opts.AutoRotateSpeed, 2*math.Pi)
	}
	camera := mgl64.Rotate3DY(e.cameraYaw).Mul3x1(e.opts.Camera)

	// Entities live in the rotated group; billboards need the camera in
	// group-local space.
	localCam := blend.Euler(e.rotation).Conjugate().Rotate(camera.Sub(GroupOffset))
	tick := blend.Tick{Current: current, Elapsed: e.elapsed, Camera: localCam}

	transforms := e.anim.Step(tick)
	ribbon := e.ribbon.Step(tick)

	f := &Frame{
		Seq:               e.seq,
		Elapsed:           e.elapsed,
		Current:           current,
		Target:            snap.Target,
		Active:            snap.Active,
		Formed:            snap.Formed,
		AutoRotate:        snap.AutoRotate,
		Status:            snap.Status,
		Pointer:           snap.Pointer,
		GroupRotation:     e.rotation,
		Camera:            camera,
		CameraYaw:         e.cameraYaw,
		Transforms:        transforms,
		Ribbon:            ribbon,
		RibbonInteraction: e.ribbon.Interaction(),
	}
	e.last = f
	e.lastSeq.Store(f.Seq)

	dur := time.Since(start)
	observability.Engine().OnTick(context.Background(), f.Seq, current, dur)
	if f.Seq%uint64(e.opts.FPS) == 0 {
		e.logger.Debug("tick", "seq", f.Seq, "current", current, "target", snap.Target, "dur", dur)
	}
	return f
}

// stepGroup eases the group rotation toward the pointer while the display is
// dispersed and a hand is steering, and back to rest otherwise.
func (e *Engine) stepGroup(s morph.Snapshot) {
	var target mgl64.Vec3
	rate := GroupSettle
	if s.Current < GroupSteerBelow && s.Active {
		target = mgl64.Vec3{-s.Pointer.Y * GroupPitchGain, s.Pointer.X * GroupYawGain, 0}
		rate = GroupFollow
	}
	e.rotation = blend.Approach(e.rotation, target, rate)
}
