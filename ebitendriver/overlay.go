package ebitendriver

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/aim"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	gridColor     = color.RGBA{48, 52, 64, 255}
	targetColor   = color.RGBA{240, 200, 80, 255}
	groupColor    = color.RGBA{120, 200, 240, 255}
	deadZoneColor = color.RGBA{80, 200, 120, 160}
	softZoneColor = color.RGBA{220, 80, 80, 160}
	marginColor   = color.RGBA{0, 0, 0, 255}
)

// Debug drawing of the brain output: a ground grid, the targets, the
// composition guides of the live camera and a text summary.
//
// The overlay reuses its canvas across frames and only recreates it
// when the viewport grows.
type overlay struct {
	canvas        *ebiten.Image
	width         int
	height        int
	drawImageOpts ebiten.DrawImageOptions
}

// Returns a canvas of the given size, reusing the previous one when
// it's big enough.
func (self *overlay) target(width, height int) *ebiten.Image {
	width, height = max(width, 1), max(height, 1)
	if self.canvas != nil {
		bounds := self.canvas.Bounds()
		if width <= bounds.Dx() && height <= bounds.Dy() {
			self.width, self.height = width, height
			canvas := self.canvas.SubImage(image.Rect(0, 0, width, height)).(*ebiten.Image)
			canvas.Clear()
			return canvas
		}
	}
	self.canvas = ebiten.NewImage(width, height)
	self.width, self.height = width, height
	return self.canvas
}

// Projects the canvas into the target at the given offset.
func (self *overlay) project(canvas, target *ebiten.Image, x, y int) {
	self.drawImageOpts.GeoM.Reset()
	self.drawImageOpts.GeoM.Translate(float64(x), float64(y))
	target.DrawImage(canvas, &self.drawImageOpts)
}

func (self *overlay) draw(canvas *ebiten.Image, brain *cinemachine.Brain, targets map[string]cinemachine.Target) {
	self.drawScene(canvas, brain, targets)
	width, height := float64(self.width), float64(self.height)

	// composition guides
	if live := brain.LiveCamera(); live != nil && !brain.IsBlending() {
		if composition, ok := liveComposition(live); ok {
			strokeScreenRect(canvas, composition.SoftGuideRect(), width, height, deadZoneColor)
			strokeScreenRect(canvas, composition.HardGuideRect(), width, height, softZoneColor)
		}
	}

	ebitenutil.DebugPrintAt(canvas, summary(brain, targets), 8, 8)
}

// Draws the ground grid and the targets only.
func (self *overlay) drawScene(canvas *ebiten.Image, brain *cinemachine.Brain, targets map[string]cinemachine.Target) {
	state := brain.State()
	width, height := float64(self.width), float64(self.height)

	// ground grid
	const extent, step = 50, 5
	for i := -extent; i <= extent; i += step {
		drawWorldLine(canvas, &state, mgl64.Vec3{float64(i), 0, -extent}, mgl64.Vec3{float64(i), 0, extent}, width, height)
		drawWorldLine(canvas, &state, mgl64.Vec3{-extent, 0, float64(i)}, mgl64.Vec3{extent, 0, float64(i)}, width, height)
	}

	// targets, groups with their bounding sphere
	for _, target := range targets {
		if group, isGroup := cinemachine.AsGroup(target); isGroup {
			center, radius := group.Sphere()
			if p, ok := Project(&state, center, width, height); ok {
				r := projectedRadius(&state, center, radius, height)
				vector.StrokeCircle(canvas, float32(p.X), float32(p.Y), float32(r), 1, groupColor, true)
			}
			continue
		}
		if p, ok := Project(&state, target.Position(), width, height); ok {
			vector.DrawFilledCircle(canvas, float32(p.X), float32(p.Y), 4, targetColor, true)
		}
	}
}

func liveComposition(vcam *cinemachine.VirtualCamera) (utils.ScreenComposition, bool) {
	switch composer := vcam.Component(cinemachine.StageAim).(type) {
	case *aim.Composer:
		return composer.Composition, true
	case *aim.GroupComposer:
		return composer.Composition, true
	default:
		return utils.ScreenComposition{}, false
	}
}

func summary(brain *cinemachine.Brain, targets map[string]cinemachine.Target) string {
	var out strings.Builder
	state := brain.State()
	live := "none"
	if vcam := brain.LiveCamera(); vcam != nil {
		live = vcam.Name
	}
	fmt.Fprintf(&out, "live: %s", live)
	if blend := brain.ActiveBlend(); blend != nil {
		fmt.Fprintf(&out, " (blending %s)", blend.String())
	}
	pos := state.FinalPosition()
	angles := utils.EulerAngles(state.FinalOrientation())
	fmt.Fprintf(&out, "\npos: %.2f %.2f %.2f", pos[0], pos[1], pos[2])
	fmt.Fprintf(&out, "\nrot: %.1f %.1f %.1f", angles[0], angles[1], angles[2])
	if state.Lens.Orthographic {
		fmt.Fprintf(&out, "\northo: %.2f", state.Lens.OrthographicSize)
	} else {
		fmt.Fprintf(&out, "\nfov: %.1f", state.Lens.FieldOfView)
	}

	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := targets[name].Position()
		fmt.Fprintf(&out, "\n%s: %.1f %.1f %.1f", name, p[0], p[1], p[2])
	}
	return out.String()
}

func drawWorldLine(canvas *ebiten.Image, state *cinemachine.CameraState, a, b mgl64.Vec3, width, height float64) {
	pa, okA := Project(state, a, width, height)
	pb, okB := Project(state, b, width, height)
	if !okA || !okB {
		return
	}
	vector.StrokeLine(canvas, float32(pa.X), float32(pa.Y), float32(pb.X), float32(pb.Y), 1, gridColor, false)
}

func strokeScreenRect(canvas *ebiten.Image, rect utils.ScreenRect, width, height float64, clr color.Color) {
	x, y, w, h := ScreenRectToViewport(rect, width, height)
	vector.StrokeRect(canvas, float32(x), float32(y), float32(w), float32(h), 1, clr, false)
}

// Approximate size in pixels of a sphere at the given point.
func projectedRadius(state *cinemachine.CameraState, center mgl64.Vec3, radius, height float64) float64 {
	lens := state.Lens
	if lens.Orthographic {
		return radius / lens.OrthographicSize * height / 2
	}
	distance := center.Sub(state.FinalPosition()).Len()
	if distance < utils.Epsilon {
		return 0
	}
	return radius / (distance * math.Tan(mgl64.DegToRad(lens.FieldOfView)/2)) * height / 2
}

func fillMargins(screen *ebiten.Image, x, y, w, h int) {
	bounds := screen.Bounds()
	sw, sh := float32(bounds.Dx()), float32(bounds.Dy())
	if x > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(x), sh, marginColor, false)
		vector.DrawFilledRect(screen, float32(x+w), 0, sw-float32(x+w), sh, marginColor, false)
	}
	if y > 0 {
		vector.DrawFilledRect(screen, 0, 0, sw, float32(y), marginColor, false)
		vector.DrawFilledRect(screen, 0, float32(y+h), sw, sh-float32(y+h), marginColor, false)
	}
}
