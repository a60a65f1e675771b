package cinemachine

import (
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Hints for the brain on how to interpolate a state during blends.
type BlendHint uint8

const BlendHintNone BlendHint = 0

const (
	BlendHintSphericalPosition BlendHint = 1 << iota // swing around the look-at point
	BlendHintIgnoreLookAt                            // blend as if there was no look-at target
)

// The output of the rig pipeline for one frame. It's created fresh
// at the start of each camera update and passed by pointer through
// the Body, Aim and Noise stages, each of them mutating it.
//
// Consumers should only read the corrected values, see
// [CameraState.CorrectedPosition]() and [CameraState.CorrectedOrientation]().
type CameraState struct {
	Lens        LensSettings
	ReferenceUp mgl64.Vec3

	// Point the Aim stage should look at. Only meaningful when
	// HasLookAt is true.
	ReferenceLookAt mgl64.Vec3
	HasLookAt       bool

	RawPosition    mgl64.Vec3
	RawOrientation mgl64.Quat

	// Euler rotation (degrees) that the Body stage applied this frame
	// and that Aim stage damping should not resist.
	PositionDampingBypass mgl64.Vec3

	PositionCorrection    mgl64.Vec3
	OrientationCorrection mgl64.Quat

	BlendHint BlendHint
}

// Returns an empty state: identity orientations and +Y up.
func NewCameraState() CameraState {
	return CameraState{
		Lens:                  DefaultLens(),
		ReferenceUp:           utils.Up,
		RawOrientation:        mgl64.QuatIdent(),
		OrientationCorrection: mgl64.QuatIdent(),
	}
}

// RawPosition + PositionCorrection.
func (self *CameraState) CorrectedPosition() mgl64.Vec3 {
	return self.RawPosition.Add(self.PositionCorrection)
}

// RawOrientation * OrientationCorrection.
func (self *CameraState) CorrectedOrientation() mgl64.Quat {
	return self.RawOrientation.Mul(self.OrientationCorrection).Normalize()
}

// Same as [CameraState.CorrectedPosition](). The position a renderer
// should use.
func (self *CameraState) FinalPosition() mgl64.Vec3 {
	return self.CorrectedPosition()
}

// Corrected orientation with the lens dutch applied. The orientation
// a renderer should use.
func (self *CameraState) FinalOrientation() mgl64.Quat {
	q := self.CorrectedOrientation()
	if self.Lens.Dutch != 0 {
		q = q.Mul(utils.AngleAxis(self.Lens.Dutch, utils.Forward))
	}
	return q
}

// Adds a correction in world space.
func (self *CameraState) AddPositionCorrection(delta mgl64.Vec3) {
	self.PositionCorrection = self.PositionCorrection.Add(delta)
}

// Composes a correction on top of the existing one, in camera-local space.
func (self *CameraState) AddOrientationCorrection(q mgl64.Quat) {
	self.OrientationCorrection = self.OrientationCorrection.Mul(q).Normalize()
}

// Returns whether any value in the state went NaN or infinite.
func (self *CameraState) HasNaN() bool {
	return utils.IsNaNVec3(self.RawPosition) || utils.IsNaNVec3(self.PositionCorrection) ||
		utils.IsNaNVec3(self.ReferenceUp) ||
		isNaNQuat(self.RawOrientation) || isNaNQuat(self.OrientationCorrection)
}

// Interpolates between two states. The corrections are baked into
// the raw values of the result.
func LerpCameraState(a, b *CameraState, t float64) CameraState {
	t = utils.Clamp01(t)
	out := NewCameraState()
	out.Lens = LerpLens(a.Lens, b.Lens, t)
	out.ReferenceUp = utils.SafeNormalize(utils.LerpVec3(a.ReferenceUp, b.ReferenceUp, t))
	if out.ReferenceUp == (mgl64.Vec3{}) {
		out.ReferenceUp = b.ReferenceUp
	}

	posA, posB := a.CorrectedPosition(), b.CorrectedPosition()
	out.RawPosition = utils.LerpVec3(posA, posB, t)

	aLooks := a.HasLookAt && a.BlendHint&BlendHintIgnoreLookAt == 0
	bLooks := b.HasLookAt && b.BlendHint&BlendHintIgnoreLookAt == 0
	switch {
	case aLooks && bLooks:
		out.ReferenceLookAt = utils.LerpVec3(a.ReferenceLookAt, b.ReferenceLookAt, t)
		out.HasLookAt = true
		if b.BlendHint&BlendHintSphericalPosition != 0 {
			// swing around the look-at point instead of cutting through it
			dirA, dirB := posA.Sub(a.ReferenceLookAt), posB.Sub(b.ReferenceLookAt)
			dist := utils.Lerp(dirA.Len(), dirB.Len(), t)
			dir := utils.SlerpWithReferenceUp(
				utils.LookRotation(dirA, out.ReferenceUp),
				utils.LookRotation(dirB, out.ReferenceUp), t, out.ReferenceUp).Rotate(utils.Forward)
			out.RawPosition = out.ReferenceLookAt.Add(dir.Mul(dist))
		}
	case bLooks:
		out.ReferenceLookAt, out.HasLookAt = b.ReferenceLookAt, t > 0.5
	case aLooks:
		out.ReferenceLookAt, out.HasLookAt = a.ReferenceLookAt, t < 0.5
	}

	out.RawOrientation = utils.SlerpWithReferenceUp(
		a.CorrectedOrientation(), b.CorrectedOrientation(), t, out.ReferenceUp)
	out.PositionDampingBypass = utils.LerpVec3(a.PositionDampingBypass, b.PositionDampingBypass, t)
	return out
}

func isNaNQuat(q mgl64.Quat) bool {
	return utils.IsNaNVec3(q.V) || utils.IsNaNVec3(mgl64.Vec3{q.W, 0, 0})
}
