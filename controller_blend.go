package cinemachine

import (
	"fmt"

	"github.com/edwinsyarief/cinemachine/utils"
)

// Shapes of the weight curve used when blending from one camera to
// another.
type BlendStyle uint8

const (
	BlendCut BlendStyle = iota
	BlendEaseInOut
	BlendEaseIn
	BlendEaseOut
	BlendHardIn
	BlendHardOut
	BlendLinear
	blendStyleCount
)

var blendStyleNames = [blendStyleCount]string{
	BlendCut:       "cut",
	BlendEaseInOut: "ease_in_out",
	BlendEaseIn:    "ease_in",
	BlendEaseOut:   "ease_out",
	BlendHardIn:    "hard_in",
	BlendHardOut:   "hard_out",
	BlendLinear:    "linear",
}

func (self BlendStyle) String() string {
	if self >= blendStyleCount {
		return "unknown"
	}
	return blendStyleNames[self]
}

// Returns the style with the given name, as used in scene files.
func ParseBlendStyle(name string) (BlendStyle, error) {
	for style, styleName := range blendStyleNames {
		if styleName == name {
			return BlendStyle(style), nil
		}
	}
	return BlendCut, fmt.Errorf("unknown blend style %q", name)
}

func (self BlendStyle) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *BlendStyle) UnmarshalText(text []byte) error {
	style, err := ParseBlendStyle(string(text))
	if err != nil {
		return err
	}
	*self = style
	return nil
}

// Evaluates the curve at t in [0, 1]. All curves go from 0 to 1.
func (self BlendStyle) Evaluate(t float64) float64 {
	t = utils.Clamp01(t)
	switch self {
	case BlendCut:
		return 1
	case BlendLinear:
		return t
	case BlendEaseInOut:
		return hermite(t, 0, 0)
	case BlendEaseIn:
		return hermite(t, 0, 1)
	case BlendEaseOut:
		return hermite(t, 1, 0)
	case BlendHardIn:
		return hermite(t, 0, 2)
	case BlendHardOut:
		return hermite(t, 2, 0)
	default:
		panic("invalid blend style")
	}
}

// Cubic hermite from (0, 0) to (1, 1) with the given end tangents.
func hermite(t, startTangent, endTangent float64) float64 {
	t2, t3 := t*t, t*t*t
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h10*startTangent + h01 + h11*endTangent
}

// A blend style and duration.
type BlendDefinition struct {
	Style BlendStyle `yaml:"style"`
	Time  float64    `yaml:"time"`
}

// Whether the definition produces an instant cut.
func (self BlendDefinition) IsCut() bool {
	return self.Style == BlendCut || self.Time <= 0
}

// Returns the blend weight after the given elapsed time.
func (self BlendDefinition) Weight(elapsed float64) float64 {
	if self.IsCut() {
		return 1
	}
	return self.Style.Evaluate(elapsed / self.Time)
}

// --- blend sources ---

// Anything that can be one side of a blend: a camera or another
// blend in progress.
type blendSource interface {
	blendState() CameraState
	describe() string
	eachCamera(fn func(*VirtualCamera))
}

func (self *VirtualCamera) blendState() CameraState { return self.state }
func (self *VirtualCamera) describe() string        { return self.Name }
func (self *VirtualCamera) eachCamera(fn func(*VirtualCamera)) {
	fn(self)
}

// A frozen state, used when a blend has to start from a pose that
// no longer belongs to any camera.
type snapshotSource struct {
	state CameraState
}

func (self *snapshotSource) blendState() CameraState           { return self.state }
func (self *snapshotSource) describe() string                  { return "snapshot" }
func (self *snapshotSource) eachCamera(fn func(*VirtualCamera)) {}

// --- camera blend ---

// A blend in progress between two sources. The from side can itself
// be a blend, when a new transition starts before the previous one
// ends.
type CameraBlend struct {
	from       blendSource
	to         blendSource
	definition BlendDefinition
	elapsed    float64
}

func newCameraBlend(from, to blendSource, definition BlendDefinition) *CameraBlend {
	return &CameraBlend{from: from, to: to, definition: definition}
}

// Returns the current weight of the destination, from 0 to 1.
func (self *CameraBlend) Weight() float64 {
	return self.definition.Weight(self.elapsed)
}

// Returns the elapsed and total blend times.
func (self *CameraBlend) Progress() (elapsed, duration float64) {
	return self.elapsed, self.definition.Time
}

func (self *CameraBlend) IsComplete() bool {
	return self.definition.IsCut() || self.elapsed >= self.definition.Time
}

// Returns a readable description, like "A -> B (40%)".
func (self *CameraBlend) String() string {
	return fmt.Sprintf("%s -> %s (%.0f%%)", self.from.describe(), self.to.describe(), self.Weight()*100)
}

func (self *CameraBlend) advance(deltaTime float64) {
	if deltaTime > 0 {
		self.elapsed += deltaTime
	}
	if from, isBlend := self.from.(*CameraBlend); isBlend {
		from.advance(deltaTime)
		if from.IsComplete() {
			self.from = from.to
		}
	}
}

func (self *CameraBlend) blendState() CameraState {
	from, to := self.from.blendState(), self.to.blendState()
	return LerpCameraState(&from, &to, self.Weight())
}

func (self *CameraBlend) describe() string {
	return "(" + self.String() + ")"
}

func (self *CameraBlend) eachCamera(fn func(*VirtualCamera)) {
	self.from.eachCamera(fn)
	self.to.eachCamera(fn)
}

// Whether the camera takes part in the blend on either side.
func (self *CameraBlend) Uses(vcam *VirtualCamera) bool {
	found := false
	self.eachCamera(func(cam *VirtualCamera) {
		found = found || cam == vcam
	})
	return found
}
