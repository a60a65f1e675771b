package group

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Which dimensions of a group the framing rigs try to fit on screen.
type FramingMode uint8

const (
	FramingHorizontal FramingMode = iota
	FramingVertical
	FramingHorizontalAndVertical
	FramingNone // the group is tracked as a single point
	framingModeCount
)

var framingModeNames = [framingModeCount]string{
	FramingHorizontal:            "horizontal",
	FramingVertical:              "vertical",
	FramingHorizontalAndVertical: "horizontal_and_vertical",
	FramingNone:                  "none",
}

func (self FramingMode) String() string {
	if self >= framingModeCount {
		return "unknown"
	}
	return framingModeNames[self]
}

func (self FramingMode) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *FramingMode) UnmarshalText(text []byte) error {
	for mode, name := range framingModeNames {
		if name == string(text) {
			*self = FramingMode(mode)
			return nil
		}
	}
	return fmt.Errorf("unknown group framing mode %q", text)
}

// Returns the height the screen must show for the bounds to fit,
// given the bounds size in camera space and the screen aspect.
func (self FramingMode) TargetHeight(size mgl64.Vec3, aspect float64) float64 {
	aspect = math.Max(aspect, 0.0001)
	switch self {
	case FramingHorizontal:
		return size[0] / aspect
	case FramingVertical:
		return size[1]
	default:
		return math.Max(size[0]/aspect, size[1])
	}
}

// How the framing rigs change the shot to fit a group.
type AdjustmentMode uint8

const (
	ZoomOnly      AdjustmentMode = iota // change the lens only
	DollyOnly                           // move the camera only
	DollyThenZoom                       // move within limits, then zoom for the rest
	adjustmentModeCount
)

var adjustmentModeNames = [adjustmentModeCount]string{
	ZoomOnly:      "zoom_only",
	DollyOnly:     "dolly_only",
	DollyThenZoom: "dolly_then_zoom",
}

func (self AdjustmentMode) String() string {
	if self >= adjustmentModeCount {
		return "unknown"
	}
	return adjustmentModeNames[self]
}

func (self AdjustmentMode) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

func (self *AdjustmentMode) UnmarshalText(text []byte) error {
	for mode, name := range adjustmentModeNames {
		if name == string(text) {
			*self = AdjustmentMode(mode)
			return nil
		}
	}
	return fmt.Errorf("unknown adjustment mode %q", text)
}
