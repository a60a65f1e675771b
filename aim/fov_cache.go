package aim

import (
	"math"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	ebimath "github.com/edwinsyarief/ebi-math"
	"github.com/go-gl/mathgl/mgl64"
)

// Caches the composition rects converted from screen space to field
// of view space, where distances are proportional to rotation angles.
// The conversion only runs again when an input changes.
type fovCache struct {
	fov, fovH        float64
	aspect           float64
	softGuide        utils.ScreenRect
	hardGuide        utils.ScreenRect
	fovSoftGuideRect utils.ScreenRect
	fovHardGuideRect utils.ScreenRect
	valid            bool
}

// Orthographic lenses get a fake field of view: the angle the ortho
// size spans at the target distance.
func (self *fovCache) update(lens cinemachine.LensSettings, softGuide, hardGuide utils.ScreenRect, targetDistance float64) {
	fov := lens.FieldOfView
	if lens.Orthographic {
		fov = mgl64.RadToDeg(2 * math.Atan(lens.OrthographicSize/targetDistance))
	}
	if self.valid && self.fov == fov && self.aspect == lens.Aspect &&
		self.softGuide == softGuide && self.hardGuide == hardGuide {
		return
	}
	self.valid = true
	self.fov = fov
	self.fovH = mgl64.RadToDeg(2 * math.Atan(math.Tan(mgl64.DegToRad(fov)/2)*lens.Aspect))
	self.aspect = lens.Aspect
	self.softGuide, self.hardGuide = softGuide, hardGuide
	self.fovSoftGuideRect = screenToFOV(softGuide, self.fov, self.fovH, self.aspect)
	self.fovHardGuideRect = screenToFOV(hardGuide, self.fov, self.fovH, self.aspect)
}

// Converts a normalized screen rect (y down) into normalized angles by
// unprojecting its edges through the lens projection.
func screenToFOV(rect utils.ScreenRect, fov, fovH, aspect float64) utils.ScreenRect {
	inverse := mgl64.Perspective(mgl64.DegToRad(fov), aspect, 0.0001, 2).Inv()
	unproject := func(ndcX, ndcY float64) mgl64.Vec3 {
		p := inverse.Mul4x1(mgl64.Vec4{ndcX, ndcY, 0.5, 1})
		return p.Vec3().Mul(1 / p[3])
	}
	// screen y grows downward, ndc y upward; the view looks down -z
	vertical := func(y float64) float64 {
		p := unproject(0, 1-2*y)
		return (fov/2 - mgl64.RadToDeg(math.Atan2(p[1], -p[2]))) / fov
	}
	horizontal := func(x float64) float64 {
		p := unproject(2*x-1, 0)
		return (fovH/2 + mgl64.RadToDeg(math.Atan2(p[0], -p[2]))) / fovH
	}
	return utils.ScreenRect{
		Min: ebimath.V(horizontal(rect.Min.X), vertical(rect.Min.Y)),
		Max: ebimath.V(horizontal(rect.Max.X), vertical(rect.Max.Y)),
	}
}
