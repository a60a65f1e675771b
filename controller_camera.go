package cinemachine

import (
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// A virtual camera: a Body, Aim and Noise rig slot evaluated once per
// frame to produce a [CameraState]. Many virtual cameras can exist at
// once; a [Brain] decides which of them drive the real camera.
//
// Create virtual cameras with [NewVirtualCamera]().
type VirtualCamera struct {
	Name     string
	Priority int
	Lens     LensSettings

	// Settings used when this camera becomes live.
	Transition TransitionParameters

	// False until the first update, or after a cut. When false, rigs
	// don't apply damping.
	PreviousStateIsValid bool

	// How much the camera is attached to its targets, from 0 to 1.
	// Lower values loosen the damping, which helps when blending.
	FollowTargetAttachment float64
	LookAtTargetAttachment float64

	// identity and services
	id       uuid.UUID
	logger   zerolog.Logger
	clock    Clock
	ownClock *ManualClock

	// targets
	follow        Target
	lookAt        Target
	prevFollow    Target
	prevLookAt    Target
	followChanged bool
	lookAtChanged bool

	// pipeline
	components [stageCount]Component
	state      CameraState
	position   mgl64.Vec3
	rotation   mgl64.Quat
	isLive     bool
	inUpdate   bool
}

// Describes how a camera takes over when it goes live.
type TransitionParameters struct {
	BlendHint BlendHint `yaml:"-"`

	// Start from the outgoing camera's pose instead of cutting to
	// this camera's own ideal pose.
	InheritPosition bool `yaml:"inherit_position"`
}

// --- pipeline ---

func (self *VirtualCamera) updateCameraState(worldUp mgl64.Vec3, deltaTime float64, isLive bool) {
	if self.inUpdate {
		panic("can't update a virtual camera recursively")
	}
	self.inUpdate = true
	defer func() { self.inUpdate = false }()

	if self.ownClock != nil {
		self.ownClock.Advance(deltaTime)
	}
	self.isLive = isLive
	self.updateTargetCache()
	if !self.PreviousStateIsValid {
		deltaTime = -1
	}

	self.state = self.calculateNewState(worldUp, deltaTime)
	if self.state.HasNaN() {
		self.logger.Error().Float64("dt", deltaTime).Msg("camera state went NaN, keeping previous pose")
		self.state.RawPosition, self.state.RawOrientation = self.position, self.rotation
		self.state.PositionCorrection = mgl64.Vec3{}
		self.state.OrientationCorrection = mgl64.QuatIdent()
	}
	self.position = self.state.RawPosition
	self.rotation = self.state.RawOrientation
	self.PreviousStateIsValid = true
}

func (self *VirtualCamera) calculateNewState(worldUp mgl64.Vec3, deltaTime float64) CameraState {
	state := self.pullStateFromCamera(worldUp)

	for _, component := range self.components {
		if component == nil || !component.IsValid(self) {
			continue
		}
		if pre, ok := component.(PrePipelineMutator); ok {
			pre.PrePipelineMutateCameraState(self, &state, deltaTime)
		}
	}

	for stage := StageBody; stage < stageCount; stage++ {
		component := self.components[stage]
		if component == nil || !component.IsValid(self) {
			continue // invalid rigs leave the state untouched
		}
		component.MutateCameraState(self, &state, deltaTime)
	}
	return state
}

func (self *VirtualCamera) pullStateFromCamera(worldUp mgl64.Vec3) CameraState {
	state := NewCameraState()
	state.Lens = self.Lens
	state.BlendHint = self.Transition.BlendHint
	state.ReferenceUp = utils.SafeNormalize(worldUp)
	if state.ReferenceUp == (mgl64.Vec3{}) {
		state.ReferenceUp = utils.Up
	}
	if self.lookAt != nil {
		state.ReferenceLookAt = self.lookAt.Position()
		state.HasLookAt = true
	}
	state.RawPosition = self.position
	state.RawOrientation = self.rotation
	return state
}

func (self *VirtualCamera) updateTargetCache() {
	self.followChanged = self.follow != self.prevFollow
	self.lookAtChanged = self.lookAt != self.prevLookAt
	if self.followChanged {
		self.logger.Debug().Bool("has_target", self.follow != nil).Msg("follow target changed")
	}
	if self.lookAtChanged {
		self.logger.Debug().Bool("has_target", self.lookAt != nil).Msg("look at target changed")
	}
	self.prevFollow = self.follow
	self.prevLookAt = self.lookAt
}

func (self *VirtualCamera) markStandby() {
	self.isLive = false
}

func (self *VirtualCamera) mustNotBeUpdating(action string) {
	if self.inUpdate {
		panic("can't " + action + " during a camera update")
	}
}
