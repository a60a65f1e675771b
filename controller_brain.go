package cinemachine

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
)

// Picks the live camera every frame and blends the outputs when the
// live camera changes. Create brains with [NewBrain]().
type Brain struct {
	// Up direction passed to every camera update.
	WorldUp mgl64.Vec3

	// Blend used when no custom blend matches a transition.
	DefaultBlend BlendDefinition

	logger       zerolog.Logger
	cameras      []registeredCamera
	nextSeq      uint64
	customBlends map[blendKey]BlendDefinition

	live      *VirtualCamera
	blend     *CameraBlend
	output    CameraState
	hasOutput bool
	frame     uint64
	inUpdate  bool
}

type registeredCamera struct {
	vcam *VirtualCamera
	seq  uint64
}

type blendKey struct {
	from, to string
}

// --- update ---

func (self *Brain) update(deltaTime float64) {
	if self.inUpdate {
		panic("can't update a brain recursively")
	}
	self.inUpdate = true
	defer func() { self.inUpdate = false }()
	self.frame += 1

	// advance the blend that was already running
	if self.blend != nil {
		self.blend.advance(deltaTime)
		if deltaTime < 0 || self.blend.IsComplete() {
			self.logger.Debug().Str("camera", self.live.Name).Msg("blend finished")
			self.blend = nil
		}
	}

	// select and transition
	chosen := self.chooseLiveCamera()
	if chosen != self.live {
		self.transition(self.live, chosen, deltaTime)
	}

	// update everything that contributes to the output
	updated := make(map[*VirtualCamera]bool, 2)
	updateLive := func(vcam *VirtualCamera) {
		if updated[vcam] {
			return
		}
		updated[vcam] = true
		vcam.updateCameraState(self.WorldUp, deltaTime, true)
	}
	if self.blend != nil {
		self.blend.eachCamera(updateLive)
	} else if self.live != nil {
		updateLive(self.live)
	}
	for _, registered := range self.cameras {
		if !updated[registered.vcam] {
			registered.vcam.markStandby()
		}
	}

	// compose
	switch {
	case self.blend != nil:
		self.output = self.blend.blendState()
		self.hasOutput = true
	case self.live != nil:
		self.output = self.live.state
		self.hasOutput = true
	}
}

func (self *Brain) chooseLiveCamera() *VirtualCamera {
	var best *registeredCamera
	for i := range self.cameras {
		candidate := &self.cameras[i]
		if best == nil || candidate.vcam.Priority > best.vcam.Priority ||
			(candidate.vcam.Priority == best.vcam.Priority && candidate.seq > best.seq) {
			best = candidate
		}
	}
	if best == nil {
		return nil
	}
	return best.vcam
}

func (self *Brain) transition(from, to *VirtualCamera, deltaTime float64) {
	self.live = to
	if to == nil {
		self.blend = nil
		self.logger.Info().Msg("no live camera")
		return
	}

	var outgoing *CameraState
	if self.hasOutput {
		snapshot := self.output
		outgoing = &snapshot
	}

	definition := self.resolveBlend(from, to)
	if from == nil || deltaTime < 0 || definition.IsCut() {
		self.blend = nil
		self.logger.Info().Str("camera", to.Name).Str("camera_id", to.id.String()).
			Msg("camera activated")
	} else {
		var source blendSource = from
		if self.blend != nil {
			source = self.blend
		} else if !self.cameraRegistered(from) && outgoing != nil {
			source = &snapshotSource{state: *outgoing}
		}
		self.blend = newCameraBlend(source, to, definition)
		self.logger.Info().Str("camera", to.Name).Str("from", source.describe()).
			Str("style", definition.Style.String()).Float64("time", definition.Time).
			Msg("blend started")
	}
	to.OnTransitionFromCamera(outgoing, self.WorldUp, deltaTime)
}

func (self *Brain) resolveBlend(from, to *VirtualCamera) BlendDefinition {
	if from == nil {
		return BlendDefinition{Style: BlendCut}
	}
	keys := [...]blendKey{
		{from.Name, to.Name},
		{from.Name, AnyCamera},
		{AnyCamera, to.Name},
	}
	for _, key := range keys {
		if definition, found := self.customBlends[key]; found {
			return definition
		}
	}
	return self.DefaultBlend
}

func (self *Brain) cameraRegistered(vcam *VirtualCamera) bool {
	return self.indexOf(vcam) >= 0
}

func (self *Brain) indexOf(vcam *VirtualCamera) int {
	for i, registered := range self.cameras {
		if registered.vcam == vcam {
			return i
		}
	}
	return -1
}

func (self *Brain) mustNotBeUpdating(action string) {
	if self.inUpdate {
		panic("can't " + action + " during a brain update")
	}
}
