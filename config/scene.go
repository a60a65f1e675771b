// Package config loads camera rig scenes from YAML files and builds
// them into live cameras, targets and a brain.
//
// A scene names its targets, groups, splines and obstacles, and the
// cameras refer to them by name. Each rig slot is a type plus a
// settings node that is decoded over the rig defaults, so a scene
// only needs to list what it changes:
//
//	cameras:
//	  - name: follow
//	    follow: hero
//	    body:
//	      type: transposer
//	      settings:
//	        follow_offset: [0, 2, -10]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/shaker"
	"github.com/edwinsyarief/cinemachine/spline"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownComponent = errors.New("unknown component type")
	ErrUnknownTarget    = errors.New("unknown target")
	ErrUnknownSpline    = errors.New("unknown spline")
	ErrUnknownProfile   = errors.New("unknown noise profile")
	ErrWrongStage       = errors.New("component in the wrong rig slot")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrMissingName      = errors.New("missing name")
)

type Scene struct {
	Targets    []TargetSpec   `yaml:"targets"`
	Groups     []GroupSpec    `yaml:"groups"`
	Splines    []SplineSpec   `yaml:"splines"`
	Obstacles  []ObstacleSpec `yaml:"obstacles"`
	Cameras    []CameraSpec   `yaml:"cameras"`
	Brain      BrainSpec      `yaml:"brain"`
	Simulation SimulationSpec `yaml:"simulation"`
}

type TargetSpec struct {
	Name     string     `yaml:"name"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"` // euler degrees

	// Targets with a velocity move during the simulation, and report
	// it to the rigs that can use it.
	Velocity mgl64.Vec3 `yaml:"velocity"`
}

type GroupSpec struct {
	Name         string       `yaml:"name"`
	PositionMode string       `yaml:"position_mode"`
	RotationMode string       `yaml:"rotation_mode"`
	Members      []MemberSpec `yaml:"members"`
}

type MemberSpec struct {
	Target string   `yaml:"target"`
	Weight *float64 `yaml:"weight"` // 1 if omitted
	Radius float64  `yaml:"radius"`
}

type SplineSpec struct {
	Name       string        `yaml:"name"`
	Looped     bool          `yaml:"looped"`
	Resolution int           `yaml:"resolution"`
	Knots      []spline.Knot `yaml:"knots"`
}

type ObstacleSpec struct {
	Shape  string     `yaml:"shape"` // box or sphere
	Center mgl64.Vec3 `yaml:"center"`
	Size   mgl64.Vec3 `yaml:"size"`   // box only
	Radius float64    `yaml:"radius"` // sphere only
	Layer  uint32     `yaml:"layer"`
	Tag    string     `yaml:"tag"`
}

type CameraSpec struct {
	Name     string     `yaml:"name"`
	Priority int        `yaml:"priority"`
	Follow   string     `yaml:"follow"`
	LookAt   string     `yaml:"look_at"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"` // euler degrees

	// Decoded over the default lens.
	Lens yaml.Node `yaml:"lens"`

	FollowAttachment *float64 `yaml:"follow_attachment"`
	LookAtAttachment *float64 `yaml:"look_at_attachment"`
	InheritPosition  bool     `yaml:"inherit_position"`

	Body  *ComponentSpec `yaml:"body"`
	Aim   *ComponentSpec `yaml:"aim"`
	Noise *ComponentSpec `yaml:"noise"`
}

type ComponentSpec struct {
	Type string `yaml:"type"`

	// Decoded over the rig defaults.
	Settings yaml.Node `yaml:"settings"`

	// spline_dolly
	Spline string `yaml:"spline"`

	// perlin_noise, signal_noise: a preset name, or an inline profile
	Profile      string               `yaml:"profile"`
	NoiseProfile *shaker.NoiseProfile `yaml:"noise_profile"`

	// signal_noise
	Signal *shaker.RecordedSignal `yaml:"signal"`
}

type BrainSpec struct {
	WorldUp      *mgl64.Vec3                  `yaml:"world_up"`
	DefaultBlend *cinemachine.BlendDefinition `yaml:"default_blend"`
	CustomBlends []CustomBlendSpec            `yaml:"custom_blends"`
}

type CustomBlendSpec struct {
	From  string                 `yaml:"from"`
	To    string                 `yaml:"to"`
	Style cinemachine.BlendStyle `yaml:"style"`
	Time  float64                `yaml:"time"`
}

// Parameters for headless runs of the scene.
type SimulationSpec struct {
	Duration  float64     `yaml:"duration"`   // seconds
	DeltaTime float64     `yaml:"delta_time"` // seconds per frame
	Events    []EventSpec `yaml:"events"`
}

// Something that happens at a point of a simulation.
//
// Kinds: "warp" teleports Target by Delta and notifies the cameras,
// "force" imposes Position and Rotation on Camera, "prioritize" moves
// Camera to the top of its priority group, "priority" sets its
// Priority, and "shake" triggers the signal noise rig of Camera with
// the FadeIn, Sustain and FadeOut times.
type EventSpec struct {
	At       float64    `yaml:"at"`
	Kind     string     `yaml:"kind"`
	Camera   string     `yaml:"camera"`
	Target   string     `yaml:"target"`
	Delta    mgl64.Vec3 `yaml:"delta"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"`
	Priority int        `yaml:"priority"`
	FadeIn   float64    `yaml:"fade_in"`
	Sustain  float64    `yaml:"sustain"`
	FadeOut  float64    `yaml:"fade_out"`
}

// Default frame time for simulations that don't set one.
const DefaultDeltaTime = 1.0 / 60.0

// --- loading ---

// Reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading scene: %w", err)
	}
	scene, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return scene, nil
}

// Like [Load](), but panics on error. For tools and tests.
func MustLoad(path string) *Scene {
	scene, err := Load(path)
	if err != nil {
		panic(err)
	}
	return scene
}

// Parses and validates a scene. Unknown fields are errors, except
// inside rig settings.
func Parse(data []byte) (*Scene, error) {
	var scene Scene
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scene); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// Checks names and references. Returns every problem found, joined.
func (self *Scene) Validate() error {
	var errs []error
	targets := make(map[string]bool)
	claim := func(kind, name string, seen map[string]bool) {
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingName, kind))
		case seen[name]:
			errs = append(errs, fmt.Errorf("%w: %s %q", ErrDuplicateName, kind, name))
		}
		seen[name] = true
	}
	for _, target := range self.Targets {
		claim("target", target.Name, targets)
	}
	for _, group := range self.Groups {
		for _, member := range group.Members {
			if !targets[member.Target] {
				errs = append(errs, fmt.Errorf("%w: %q in group %q", ErrUnknownTarget, member.Target, group.Name))
			}
		}
	}
	// groups share the target namespace, but can't contain each other
	for _, group := range self.Groups {
		claim("group", group.Name, targets)
	}

	splines := make(map[string]bool)
	for _, path := range self.Splines {
		claim("spline", path.Name, splines)
		if len(path.Knots) < 2 {
			errs = append(errs, fmt.Errorf("spline %q needs at least 2 knots", path.Name))
		}
	}
	for i, obstacle := range self.Obstacles {
		if obstacle.Shape != "box" && obstacle.Shape != "sphere" {
			errs = append(errs, fmt.Errorf("obstacle %d: unknown shape %q", i, obstacle.Shape))
		}
	}

	cameras := make(map[string]bool)
	for _, camera := range self.Cameras {
		claim("camera", camera.Name, cameras)
		for _, ref := range []string{camera.Follow, camera.LookAt} {
			if ref != "" && !targets[ref] {
				errs = append(errs, fmt.Errorf("%w: %q in camera %q", ErrUnknownTarget, ref, camera.Name))
			}
		}
		slots := [...]struct {
			spec  *ComponentSpec
			stage cinemachine.Stage
		}{{camera.Body, cinemachine.StageBody}, {camera.Aim, cinemachine.StageAim}, {camera.Noise, cinemachine.StageNoise}}
		for _, slot := range slots {
			if slot.spec == nil {
				continue
			}
			if err := slot.spec.validate(slot.stage, splines); err != nil {
				errs = append(errs, fmt.Errorf("camera %q: %w", camera.Name, err))
			}
		}
	}

	for _, event := range self.Simulation.Events {
		switch event.Kind {
		case "warp":
			if !targets[event.Target] {
				errs = append(errs, fmt.Errorf("%w: %q in warp event", ErrUnknownTarget, event.Target))
			}
		case "force", "prioritize", "priority", "shake":
			if !cameras[event.Camera] {
				errs = append(errs, fmt.Errorf("unknown camera %q in %s event", event.Camera, event.Kind))
			}
		default:
			errs = append(errs, fmt.Errorf("unknown event kind %q", event.Kind))
		}
	}
	return errors.Join(errs...)
}

func (self *ComponentSpec) validate(stage cinemachine.Stage, splines map[string]bool) error {
	kind, found := cinemachine.ParseComponentKind(self.Type)
	if !found {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, self.Type)
	}
	if kindStage(kind) != stage {
		return fmt.Errorf("%w: %s in the %s slot", ErrWrongStage, kind, stage)
	}
	switch kind {
	case cinemachine.KindSplineDolly:
		if !splines[self.Spline] {
			return fmt.Errorf("%w: %q", ErrUnknownSpline, self.Spline)
		}
	case cinemachine.KindPerlinNoise, cinemachine.KindSignalNoise:
		if self.Profile != "" {
			if _, found := shaker.Preset(self.Profile); !found {
				return fmt.Errorf("%w: %q", ErrUnknownProfile, self.Profile)
			}
		}
		if self.Signal != nil && self.Signal.Rate <= 0 {
			return fmt.Errorf("signal rate must be positive")
		}
		if kind == cinemachine.KindSignalNoise && self.Signal == nil && self.Profile == "" && self.NoiseProfile == nil {
			return fmt.Errorf("signal_noise needs a signal or a noise profile")
		}
	}
	return nil
}

func kindStage(kind cinemachine.ComponentKind) cinemachine.Stage {
	switch {
	case kind <= cinemachine.KindHardLockToTarget:
		return cinemachine.StageBody
	case kind <= cinemachine.KindHardLookAt:
		return cinemachine.StageAim
	default:
		return cinemachine.StageNoise
	}
}
