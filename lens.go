package cinemachine

import (
	"math"

	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Describes the optical properties of a camera. Framing rigs may
// change the field of view or the orthographic size every frame.
type LensSettings struct {
	FieldOfView      float64 `yaml:"field_of_view"` // vertical, in degrees
	OrthographicSize float64 `yaml:"orthographic_size"`
	NearClipPlane    float64 `yaml:"near_clip_plane"`
	FarClipPlane     float64 `yaml:"far_clip_plane"`
	Dutch            float64 `yaml:"dutch"` // roll around the forward axis, in degrees
	Orthographic     bool    `yaml:"orthographic"`
	Aspect           float64 `yaml:"aspect"`
}

// Returns a 40 degree perspective lens with a 16:9 aspect.
func DefaultLens() LensSettings {
	return LensSettings{
		FieldOfView:      40,
		OrthographicSize: 10,
		NearClipPlane:    0.1,
		FarClipPlane:     5000,
		Aspect:           16.0 / 9.0,
	}
}

// Clamps the lens values to sensible ranges.
func (self *LensSettings) Validate() {
	self.FieldOfView = utils.Clamp(self.FieldOfView, 1, 179)
	self.OrthographicSize = math.Max(self.OrthographicSize, utils.Epsilon)
	if self.Aspect < utils.Epsilon {
		self.Aspect = 1
	}
	if !self.Orthographic {
		self.NearClipPlane = math.Max(self.NearClipPlane, 0.001)
	}
	self.FarClipPlane = math.Max(self.FarClipPlane, self.NearClipPlane+0.001)
}

// Returns the horizontal field of view, in degrees.
func (self LensSettings) HorizontalFieldOfView() float64 {
	halfV := mgl64.DegToRad(self.FieldOfView) / 2
	return mgl64.RadToDeg(2 * math.Atan(math.Tan(halfV)*self.Aspect))
}

// Interpolates the two lenses. The projection mode switches at the
// halfway point.
func LerpLens(a, b LensSettings, t float64) LensSettings {
	t = utils.Clamp01(t)
	lens := LensSettings{
		FieldOfView:      utils.Lerp(a.FieldOfView, b.FieldOfView, t),
		OrthographicSize: utils.Lerp(a.OrthographicSize, b.OrthographicSize, t),
		NearClipPlane:    utils.Lerp(a.NearClipPlane, b.NearClipPlane, t),
		FarClipPlane:     utils.Lerp(a.FarClipPlane, b.FarClipPlane, t),
		Dutch:            utils.LerpAngle(a.Dutch, b.Dutch, t),
		Aspect:           utils.Lerp(a.Aspect, b.Aspect, t),
		Orthographic:     a.Orthographic,
	}
	if t >= 0.5 {
		lens.Orthographic = b.Orthographic
	}
	return lens
}
