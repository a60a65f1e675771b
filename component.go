package cinemachine

import "github.com/go-gl/mathgl/mgl64"

// Pipeline stages, in evaluation order.
type Stage uint8

const (
	StageBody  Stage = iota // positions the camera
	StageAim                // orients the camera
	StageNoise              // adds a post-correction to position and orientation
	stageCount
)

func (self Stage) String() string {
	switch self {
	case StageBody:
		return "body"
	case StageAim:
		return "aim"
	case StageNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// The closed set of rig kinds that can occupy a pipeline slot.
type ComponentKind uint8

const (
	KindTransposer ComponentKind = iota
	KindFramingTransposer
	KindOrbitalTransposer
	KindOrbitalFollow
	KindSplineDolly
	KindThirdPersonFollow
	KindHardLockToTarget
	KindComposer
	KindGroupComposer
	KindPOV
	KindSameAsFollowTarget
	KindHardLookAt
	KindPerlinNoise
	KindSignalNoise
	kindCount
)

var kindNames = [kindCount]string{
	KindTransposer:         "transposer",
	KindFramingTransposer:  "framing_transposer",
	KindOrbitalTransposer:  "orbital_transposer",
	KindOrbitalFollow:      "orbital_follow",
	KindSplineDolly:        "spline_dolly",
	KindThirdPersonFollow:  "third_person_follow",
	KindHardLockToTarget:   "hard_lock_to_target",
	KindComposer:           "composer",
	KindGroupComposer:      "group_composer",
	KindPOV:                "pov",
	KindSameAsFollowTarget: "same_as_follow_target",
	KindHardLookAt:         "hard_look_at",
	KindPerlinNoise:        "perlin_noise",
	KindSignalNoise:        "signal_noise",
}

func (self ComponentKind) String() string {
	if self >= kindCount {
		return "unknown"
	}
	return kindNames[self]
}

// Returns the kind with the given name, as used in scene files.
func ParseComponentKind(name string) (ComponentKind, bool) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return ComponentKind(kind), true
		}
	}
	return 0, false
}

// The capability interface every rig implements.
//
// MutateCameraState() is only called when IsValid() returns true. A
// negative deltaTime means there's no valid previous frame: the rig
// must snap to its ideal configuration without damping.
type Component interface {
	Kind() ComponentKind
	Stage() Stage
	IsValid(vcam *VirtualCamera) bool
	MutateCameraState(vcam *VirtualCamera, state *CameraState, deltaTime float64)

	// Returns the longest damping time the rig can apply, which
	// gives an idea of how long the rig takes to settle.
	MaxDampTime() float64
}

// Optional interface for rigs that keep target-relative state and
// need to absorb teleports without a visible jump.
type TargetWarpHandler interface {
	OnTargetObjectWarped(vcam *VirtualCamera, target Target, positionDelta mgl64.Vec3)
}

// Optional interface for rigs whose internal state must follow an
// externally imposed camera pose.
type PositionForcer interface {
	ForceCameraPosition(vcam *VirtualCamera, pos mgl64.Vec3, rot mgl64.Quat)
}

// Optional interface for rigs that need to run before the Body stage,
// for example to resolve the look-at point.
type PrePipelineMutator interface {
	PrePipelineMutateCameraState(vcam *VirtualCamera, state *CameraState, deltaTime float64)
}
