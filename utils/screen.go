package utils

import ebimath "github.com/edwinsyarief/ebi-math"

// A rectangle in normalized screen space: (0, 0) is the top-left
// corner of the screen and (1, 1) the bottom-right one.
type ScreenRect struct {
	Min ebimath.Vector
	Max ebimath.Vector
}

// Creates a rect from its top-left corner and size.
func NewScreenRect(x, y, width, height float64) ScreenRect {
	return ScreenRect{Min: ebimath.V(x, y), Max: ebimath.V(x+width, y+height)}
}

// Creates a rect of the given size centered at the given point.
func ScreenRectAround(center ebimath.Vector, width, height float64) ScreenRect {
	return NewScreenRect(center.X-width/2, center.Y-height/2, width, height)
}

func (self ScreenRect) Width() float64  { return self.Max.X - self.Min.X }
func (self ScreenRect) Height() float64 { return self.Max.Y - self.Min.Y }

func (self ScreenRect) Center() ebimath.Vector {
	return ebimath.V((self.Min.X+self.Max.X)/2, (self.Min.Y+self.Max.Y)/2)
}

// Returns the rect translated by (dx, dy).
func (self ScreenRect) Offset(dx, dy float64) ScreenRect {
	return ScreenRect{
		Min: ebimath.V(self.Min.X+dx, self.Min.Y+dy),
		Max: ebimath.V(self.Max.X+dx, self.Max.Y+dy),
	}
}

func (self ScreenRect) Contains(point ebimath.Vector) bool {
	return point.X >= self.Min.X && point.X <= self.Max.X &&
		point.Y >= self.Min.Y && point.Y <= self.Max.Y
}

// Composition zones shared by the framing and composer rigs.
//
// The dead zone is centered on the screen position. The soft zone
// surrounds it and can be shifted with the bias, which goes from -0.5
// to 0.5 on each axis.
type ScreenComposition struct {
	ScreenX        float64 `yaml:"screen_x"`
	ScreenY        float64 `yaml:"screen_y"`
	DeadZoneWidth  float64 `yaml:"dead_zone_width"`
	DeadZoneHeight float64 `yaml:"dead_zone_height"`
	SoftZoneWidth  float64 `yaml:"soft_zone_width"`
	SoftZoneHeight float64 `yaml:"soft_zone_height"`
	BiasX          float64 `yaml:"bias_x"`
	BiasY          float64 `yaml:"bias_y"`
}

// Centered composition with no dead zone and a 0.8 soft zone.
func DefaultComposition() ScreenComposition {
	return ScreenComposition{
		ScreenX: 0.5, ScreenY: 0.5,
		SoftZoneWidth: 0.8, SoftZoneHeight: 0.8,
	}
}

// Clamps every field into its valid range. The soft zone is never
// smaller than the dead zone.
func (self *ScreenComposition) Validate() {
	self.ScreenX = Clamp(self.ScreenX, -0.5, 1.5)
	self.ScreenY = Clamp(self.ScreenY, -0.5, 1.5)
	self.DeadZoneWidth = Clamp01(self.DeadZoneWidth)
	self.DeadZoneHeight = Clamp01(self.DeadZoneHeight)
	self.SoftZoneWidth = Clamp(self.SoftZoneWidth, self.DeadZoneWidth, 2)
	self.SoftZoneHeight = Clamp(self.SoftZoneHeight, self.DeadZoneHeight, 2)
	self.BiasX = Clamp(self.BiasX, -0.5, 0.5)
	self.BiasY = Clamp(self.BiasY, -0.5, 0.5)
}

// The screen position as a point.
func (self ScreenComposition) ScreenPosition() ebimath.Vector {
	return ebimath.V(self.ScreenX, self.ScreenY)
}

// The dead zone rect.
func (self ScreenComposition) SoftGuideRect() ScreenRect {
	return ScreenRectAround(self.ScreenPosition(), self.DeadZoneWidth, self.DeadZoneHeight)
}

// The soft zone rect, bias applied.
func (self ScreenComposition) HardGuideRect() ScreenRect {
	r := ScreenRectAround(self.ScreenPosition(), self.SoftZoneWidth, self.SoftZoneHeight)
	return r.Offset(
		self.BiasX*(self.SoftZoneWidth-self.DeadZoneWidth),
		self.BiasY*(self.SoftZoneHeight-self.DeadZoneHeight),
	)
}
