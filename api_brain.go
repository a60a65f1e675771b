package cinemachine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Wildcard camera name for [Brain.SetCustomBlend]().
const AnyCamera = "*"

// Creates a brain with +Y as the world up and the default blend.
func NewBrain(logger zerolog.Logger) *Brain {
	return &Brain{
		WorldUp:      defaultWorldUp,
		DefaultBlend: defaultBlend,
		logger:       logger.With().Str("component", "brain").Logger(),
		customBlends: make(map[blendKey]BlendDefinition),
		output:       NewCameraState(),
	}
}

// --- cameras ---

// Registers a camera. Among cameras with the same priority, the
// most recently added one goes live. Panics if the camera was
// already added.
func (self *Brain) AddCamera(vcam *VirtualCamera) {
	self.mustNotBeUpdating("add cameras")
	if vcam == nil {
		panic("can't add a nil camera")
	}
	if self.cameraRegistered(vcam) {
		panic("camera '" + vcam.Name + "' already added to the brain")
	}
	self.nextSeq += 1
	self.cameras = append(self.cameras, registeredCamera{vcam: vcam, seq: self.nextSeq})
}

// Unregisters a camera. If it was live, the next update picks a new
// one and blends from the last output.
func (self *Brain) RemoveCamera(vcam *VirtualCamera) {
	self.mustNotBeUpdating("remove cameras")
	index := self.indexOf(vcam)
	if index < 0 {
		return
	}
	self.cameras = removeAt(self.cameras, index)
	vcam.markStandby()
	if self.blend != nil && self.blend.Uses(vcam) {
		self.blend = nil
	}
}

// Moves the camera to the top of its priority group, as if it had
// just been added.
func (self *Brain) Prioritize(vcam *VirtualCamera) {
	self.mustNotBeUpdating("prioritize cameras")
	index := self.indexOf(vcam)
	if index < 0 {
		panic("can't prioritize a camera that's not in the brain")
	}
	self.nextSeq += 1
	self.cameras[index].seq = self.nextSeq
}

// Returns the registered cameras, in registration order.
func (self *Brain) Cameras() []*VirtualCamera {
	cameras := make([]*VirtualCamera, len(self.cameras))
	for i, registered := range self.cameras {
		cameras[i] = registered.vcam
	}
	return cameras
}

// Returns the first registered camera with the given name.
func (self *Brain) Camera(name string) (*VirtualCamera, bool) {
	for _, registered := range self.cameras {
		if registered.vcam.Name == name {
			return registered.vcam, true
		}
	}
	return nil, false
}

// --- blends ---

// Sets the blend used when going from one named camera to another.
// Either name can be [AnyCamera].
func (self *Brain) SetCustomBlend(from, to string, definition BlendDefinition) {
	self.customBlends[blendKey{from, to}] = definition
}

// Returns the blend in progress, or nil.
func (self *Brain) ActiveBlend() *CameraBlend { return self.blend }

// Whether a blend is in progress.
func (self *Brain) IsBlending() bool { return self.blend != nil }

// --- update and output ---

// Selects the live camera, updates every camera that contributes to
// the output and composes the result. A negative deltaTime cuts.
func (self *Brain) Update(deltaTime float64) {
	self.update(deltaTime)
}

// Returns the camera currently live, or the destination of the blend
// in progress. Nil if there are no cameras.
func (self *Brain) LiveCamera() *VirtualCamera { return self.live }

// Whether the camera contributes to the current output.
func (self *Brain) IsLive(vcam *VirtualCamera) bool {
	if self.blend != nil {
		return self.blend.Uses(vcam)
	}
	return vcam != nil && vcam == self.live
}

// Returns the state composed in the last update.
func (self *Brain) State() CameraState { return self.output }

// Returns the number of updates done so far.
func (self *Brain) Frame() uint64 { return self.frame }

// Forwards a target teleport to every registered camera.
func (self *Brain) OnTargetObjectWarped(target Target, positionDelta mgl64.Vec3) {
	self.mustNotBeUpdating("warp targets")
	for _, registered := range self.cameras {
		registered.vcam.OnTargetObjectWarped(target, positionDelta)
	}
}
