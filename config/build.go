package config

import (
	"fmt"
	"slices"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/aim"
	"github.com/edwinsyarief/cinemachine/body"
	"github.com/edwinsyarief/cinemachine/collision"
	"github.com/edwinsyarief/cinemachine/group"
	"github.com/edwinsyarief/cinemachine/shaker"
	"github.com/edwinsyarief/cinemachine/spline"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// A built scene: everything a host needs to run it, indexed by the
// names used in the scene file.
type Rig struct {
	Brain   *cinemachine.Brain
	Clock   *cinemachine.ManualClock
	World   *collision.World
	Cameras []*cinemachine.VirtualCamera // in scene order
	Targets map[string]cinemachine.Target
	Splines map[string]*spline.Path

	movers  []*cinemachine.RigidTarget
	events  []EventSpec
	elapsed float64
	logger  zerolog.Logger
}

// Creates the targets, cameras and brain described by the scene.
func Build(scene *Scene, logger zerolog.Logger) (*Rig, error) {
	if err := scene.Validate(); err != nil {
		return nil, err
	}
	rig := &Rig{
		Brain:   cinemachine.NewBrain(logger),
		Clock:   cinemachine.NewManualClock(0),
		World:   collision.NewWorld(),
		Targets: make(map[string]cinemachine.Target),
		Splines: make(map[string]*spline.Path),
		logger:  logger,
	}

	for _, spec := range scene.Targets {
		rotation := utils.Euler(spec.Rotation)
		if spec.Velocity != (mgl64.Vec3{}) {
			mover := cinemachine.NewRigidTarget(spec.Position, spec.Velocity)
			mover.SetRotation(rotation)
			rig.movers = append(rig.movers, mover)
			rig.Targets[spec.Name] = mover
			continue
		}
		target := cinemachine.NewTargetTransform(spec.Position)
		target.SetRotation(rotation)
		rig.Targets[spec.Name] = target
	}
	for _, spec := range scene.Groups {
		built, err := buildGroup(spec, rig.Targets)
		if err != nil {
			return nil, fmt.Errorf("config: group %q: %w", spec.Name, err)
		}
		rig.Targets[spec.Name] = built
	}
	for _, spec := range scene.Splines {
		rig.Splines[spec.Name] = spline.NewPath(spec.Knots, spec.Looped, spec.Resolution)
	}
	for _, spec := range scene.Obstacles {
		var obstacle *collision.Obstacle
		if spec.Shape == "sphere" {
			obstacle = collision.NewSphere(spec.Center, spec.Radius, spec.Tag)
		} else {
			obstacle = collision.NewBox(spec.Center, spec.Size, spec.Tag)
		}
		obstacle.Layer = spec.Layer
		rig.World.Add(obstacle)
	}

	for _, spec := range scene.Cameras {
		vcam, err := rig.buildCamera(spec)
		if err != nil {
			return nil, fmt.Errorf("config: camera %q: %w", spec.Name, err)
		}
		rig.Cameras = append(rig.Cameras, vcam)
		rig.Brain.AddCamera(vcam)
	}

	if up := scene.Brain.WorldUp; up != nil {
		rig.Brain.WorldUp = utils.SafeNormalize(*up)
	}
	if blend := scene.Brain.DefaultBlend; blend != nil {
		rig.Brain.DefaultBlend = *blend
	}
	for _, spec := range scene.Brain.CustomBlends {
		rig.Brain.SetCustomBlend(spec.From, spec.To, cinemachine.BlendDefinition{Style: spec.Style, Time: spec.Time})
	}

	rig.events = slices.Clone(scene.Simulation.Events)
	slices.SortStableFunc(rig.events, func(a, b EventSpec) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		default:
			return 0
		}
	})
	return rig, nil
}

func buildGroup(spec GroupSpec, targets map[string]cinemachine.Target) (*group.Group, error) {
	built := group.New()
	var err error
	if built.PositionMode, err = group.ParsePositionMode(spec.PositionMode); err != nil {
		return nil, err
	}
	if built.RotationMode, err = group.ParseRotationMode(spec.RotationMode); err != nil {
		return nil, err
	}
	for _, member := range spec.Members {
		target, found := targets[member.Target]
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, member.Target)
		}
		weight := 1.0
		if member.Weight != nil {
			weight = *member.Weight
		}
		built.Add(target, weight, member.Radius)
	}
	return built, nil
}

func (self *Rig) buildCamera(spec CameraSpec) (*cinemachine.VirtualCamera, error) {
	vcam := cinemachine.NewVirtualCamera(spec.Name, self.logger)
	vcam.Priority = spec.Priority
	vcam.SetClock(self.Clock)
	vcam.SetTransform(spec.Position, utils.Euler(spec.Rotation))
	vcam.Transition.InheritPosition = spec.InheritPosition
	if spec.FollowAttachment != nil {
		vcam.FollowTargetAttachment = utils.Clamp01(*spec.FollowAttachment)
	}
	if spec.LookAtAttachment != nil {
		vcam.LookAtTargetAttachment = utils.Clamp01(*spec.LookAtAttachment)
	}
	if err := decodeOver(&spec.Lens, &vcam.Lens); err != nil {
		return nil, fmt.Errorf("lens: %w", err)
	}
	vcam.Lens.Validate()

	if spec.Follow != "" {
		vcam.SetFollow(self.Targets[spec.Follow])
	}
	if spec.LookAt != "" {
		vcam.SetLookAt(self.Targets[spec.LookAt])
	}
	for _, slot := range []*ComponentSpec{spec.Body, spec.Aim, spec.Noise} {
		if slot == nil {
			continue
		}
		component, err := self.buildComponent(slot)
		if err != nil {
			return nil, err
		}
		vcam.SetComponent(component)
	}
	return vcam, nil
}

// Creates the rig with its defaults, resolves the scene references it
// needs and decodes the settings over it.
func (self *Rig) buildComponent(spec *ComponentSpec) (cinemachine.Component, error) {
	kind, found := cinemachine.ParseComponentKind(spec.Type)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, spec.Type)
	}

	var component cinemachine.Component
	switch kind {
	case cinemachine.KindTransposer:
		component = body.NewTransposer()
	case cinemachine.KindFramingTransposer:
		component = body.NewFramingTransposer()
	case cinemachine.KindOrbitalTransposer:
		component = body.NewOrbitalTransposer()
	case cinemachine.KindOrbitalFollow:
		style, err := orbitStyle(&spec.Settings)
		if err != nil {
			return nil, err
		}
		component = body.NewOrbitalFollow(style)
	case cinemachine.KindSplineDolly:
		path, found := self.Splines[spec.Spline]
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpline, spec.Spline)
		}
		component = body.NewSplineDolly(path)
	case cinemachine.KindThirdPersonFollow:
		component = body.NewThirdPersonFollow(self.World)
	case cinemachine.KindHardLockToTarget:
		component = body.NewHardLockToTarget()
	case cinemachine.KindComposer:
		component = aim.NewComposer()
	case cinemachine.KindGroupComposer:
		component = aim.NewGroupComposer()
	case cinemachine.KindPOV:
		component = aim.NewPOV()
	case cinemachine.KindSameAsFollowTarget:
		component = aim.NewSameAsFollowTarget()
	case cinemachine.KindHardLookAt:
		component = aim.NewHardLookAt()
	case cinemachine.KindPerlinNoise:
		profile, err := noiseProfile(spec, "handheld_normal")
		if err != nil {
			return nil, err
		}
		component = shaker.NewPerlin(profile, 0)
	case cinemachine.KindSignalNoise:
		var source shaker.SignalSource
		if spec.Signal != nil {
			source = spec.Signal
		} else {
			profile, err := noiseProfile(spec, "")
			if err != nil {
				return nil, err
			}
			source = profile
		}
		component = shaker.NewSignalNoise(source)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, spec.Type)
	}

	if err := decodeOver(&spec.Settings, component); err != nil {
		return nil, fmt.Errorf("%s settings: %w", kind, err)
	}
	return component, nil
}

// The orbit style changes the axis defaults, so it's read before the
// rest of the settings.
func orbitStyle(settings *yaml.Node) (body.OrbitStyle, error) {
	var header struct {
		Style body.OrbitStyle `yaml:"style"`
	}
	if err := decodeOver(settings, &header); err != nil {
		return body.OrbitSphere, fmt.Errorf("orbital_follow settings: %w", err)
	}
	return header.Style, nil
}

func noiseProfile(spec *ComponentSpec, fallback string) (*shaker.NoiseProfile, error) {
	if spec.NoiseProfile != nil {
		return spec.NoiseProfile, nil
	}
	name := spec.Profile
	if name == "" {
		name = fallback
	}
	profile, found := shaker.Preset(name)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return profile, nil
}

func decodeOver(node *yaml.Node, out any) error {
	if node.Kind == 0 {
		return nil
	}
	return node.Decode(out)
}

// --- running ---

// Returns the camera with the given name.
func (self *Rig) Camera(name string) (*cinemachine.VirtualCamera, bool) {
	return self.Brain.Camera(name)
}

// Returns the simulated time so far.
func (self *Rig) Elapsed() float64 { return self.elapsed }

// Advances the scene by one frame: applies the events that are due,
// moves the targets with a velocity, and updates the brain.
func (self *Rig) Step(deltaTime float64) {
	for len(self.events) > 0 && self.events[0].At <= self.elapsed {
		self.apply(self.events[0])
		self.events = self.events[1:]
	}
	if deltaTime > 0 {
		for _, mover := range self.movers {
			mover.Step(deltaTime)
		}
		self.Clock.Advance(deltaTime)
		self.elapsed += deltaTime
	}
	self.Brain.Update(deltaTime)
}

func (self *Rig) apply(event EventSpec) {
	log := self.logger.Debug().Str("event", event.Kind).Float64("at", event.At)
	switch event.Kind {
	case "warp":
		target := self.Targets[event.Target]
		switch moved := target.(type) {
		case *cinemachine.TargetTransform:
			moved.Translate(event.Delta)
		case *cinemachine.RigidTarget:
			moved.Translate(event.Delta)
		default:
			self.logger.Warn().Str("target", event.Target).Msg("can't warp a group")
			return
		}
		self.Brain.OnTargetObjectWarped(target, event.Delta)
		log.Str("target", event.Target).Msg("target warped")
		return
	}

	vcam, found := self.Camera(event.Camera)
	if !found {
		return
	}
	switch event.Kind {
	case "force":
		vcam.ForceCameraPosition(event.Position, utils.Euler(event.Rotation))
	case "prioritize":
		self.Brain.Prioritize(vcam)
	case "priority":
		vcam.Priority = event.Priority
	case "shake":
		noise, ok := vcam.Component(cinemachine.StageNoise).(*shaker.SignalNoise)
		if !ok {
			self.logger.Warn().Str("camera", event.Camera).Msg("shake event on a camera without signal noise")
			return
		}
		noise.Shake(event.FadeIn, event.Sustain, event.FadeOut)
	}
	log.Str("camera", event.Camera).Msg("event applied")
}
