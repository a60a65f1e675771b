// Package ebitendriver runs a camera [cinemachine.Brain] inside an
// Ebitengine game loop and draws a debug view of its output.
//
// The driver advances the simulation by 1/TPS every tick, keeps the
// lens aspect of every camera in sync with the window layout, and lets
// the arrow keys drive the input axes of the live camera. Tab toggles
// the overlay text and guides, space pauses.
package ebitendriver

import (
	"errors"

	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/aim"
	"github.com/edwinsyarief/cinemachine/body"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	_ "github.com/silbinarywolf/preferdiscretegpu"
)

// Returned from Update when the window should close.
var ErrQuit = errors.New("quit requested")

// Something advanced once per tick, like a built scene. When it's nil,
// the driver updates the brain directly.
type Stepper interface {
	Step(deltaTime float64)
}

// An [ebiten.Game] that drives a camera brain.
type Driver struct {
	Brain   *cinemachine.Brain
	Stepper Stepper

	// Targets drawn by the overlay, by name.
	Targets map[string]cinemachine.Target

	// Fixed aspect for the view, letterboxed in the window. Zero uses
	// the window aspect.
	Aspect float64

	// Degrees per second at full deflection for the axis keys.
	AxisGain float64

	// Called at the end of every tick, after the brain updated.
	OnUpdate func(deltaTime float64) error

	logger        zerolog.Logger
	overlay       overlay
	horizontal    cinemachine.AxisDriver
	vertical      cinemachine.AxisDriver
	hiResWidth    int
	hiResHeight   int
	layoutChanged bool
	paused        bool
	overlayHidden bool
}

// Creates a driver for the brain. The stepper may be nil.
func New(brain *cinemachine.Brain, stepper Stepper, logger zerolog.Logger) *Driver {
	if brain == nil {
		panic("can't drive a nil brain")
	}
	return &Driver{
		Brain:      brain,
		Stepper:    stepper,
		Targets:    make(map[string]cinemachine.Target),
		AxisGain:   120,
		logger:     logger.With().Str("component", "ebitendriver").Logger(),
		horizontal: cinemachine.NewAxisDriver(1),
		vertical:   cinemachine.NewAxisDriver(1),
	}
}

// Opens a window of the given size and runs the driver until it's
// closed. Equivalent to [ebiten.RunGame]() with some window setup.
func Run(driver *Driver, title string, width, height int) error {
	if width < 1 || height < 1 {
		panic("window size must be at least (1, 1)")
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(driver)
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err
}

// Whether the simulation is paused.
func (self *Driver) Paused() bool { return self.paused }

func (self *Driver) SetPaused(paused bool) { self.paused = paused }

// Whether the window layout changed on the current tick.
func (self *Driver) LayoutHasChanged() bool { return self.layoutChanged }

// --- ebiten.Game implementation ---

func (self *Driver) Update() error {
	defer func() { self.layoutChanged = false }()
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		self.paused = !self.paused
		self.logger.Debug().Bool("paused", self.paused).Msg("pause toggled")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		self.overlayHidden = !self.overlayHidden
	}
	if self.paused {
		return nil
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	self.syncAspect()
	self.processAxisInput(deltaTime)
	if self.Stepper != nil {
		self.Stepper.Step(deltaTime)
	} else {
		self.Brain.Update(deltaTime)
	}
	if self.OnUpdate != nil {
		return self.OnUpdate(deltaTime)
	}
	return nil
}

func (self *Driver) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	x, y, w, h := Letterbox(bounds.Dx(), bounds.Dy(), self.Aspect)
	canvas := self.overlay.target(w, h)
	if self.overlayHidden {
		self.overlay.drawScene(canvas, self.Brain, self.Targets)
	} else {
		self.overlay.draw(canvas, self.Brain, self.Targets)
	}
	self.overlay.project(canvas, screen, x, y)
	fillMargins(screen, x, y, w, h)
}

func (self *Driver) Layout(logicWinWidth, logicWinHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	hiResWidth := int(float64(logicWinWidth) * scale)
	hiResHeight := int(float64(logicWinHeight) * scale)
	if hiResWidth != self.hiResWidth || hiResHeight != self.hiResHeight {
		self.layoutChanged = true
		self.hiResWidth, self.hiResHeight = hiResWidth, hiResHeight
	}
	return self.hiResWidth, self.hiResHeight
}

// --- internal ---

// Returns the aspect the cameras should render at.
func (self *Driver) viewAspect() float64 {
	if self.Aspect > 0 {
		return self.Aspect
	}
	if self.hiResWidth < 1 || self.hiResHeight < 1 {
		return 0
	}
	return float64(self.hiResWidth) / float64(self.hiResHeight)
}

func (self *Driver) syncAspect() {
	aspect := self.viewAspect()
	if aspect <= 0 {
		return
	}
	for _, vcam := range self.Brain.Cameras() {
		vcam.Lens.Aspect = aspect
	}
}

func (self *Driver) processAxisInput(deltaTime float64) {
	vcam := self.Brain.LiveCamera()
	if vcam == nil {
		return
	}
	horizontal, vertical := inputAxes(vcam)
	self.horizontal.Gain, self.vertical.Gain = self.AxisGain, self.AxisGain
	if horizontal != nil {
		self.horizontal.ProcessInput(horizontal, keyAxis(ebiten.KeyArrowLeft, ebiten.KeyArrowRight), deltaTime)
	}
	if vertical != nil {
		self.vertical.ProcessInput(vertical, keyAxis(ebiten.KeyArrowUp, ebiten.KeyArrowDown), deltaTime)
	}
}

// Returns the axes of the rigs that take player input.
func inputAxes(vcam *cinemachine.VirtualCamera) (horizontal, vertical *cinemachine.InputAxis) {
	switch rig := vcam.Component(cinemachine.StageBody).(type) {
	case *body.OrbitalFollow:
		return &rig.HorizontalAxis, &rig.VerticalAxis
	case *body.OrbitalTransposer:
		horizontal = &rig.HeadingAxis
	}
	if pov, ok := vcam.Component(cinemachine.StageAim).(*aim.POV); ok {
		return &pov.HorizontalAxis, &pov.VerticalAxis
	}
	return horizontal, nil
}

func keyAxis(negative, positive ebiten.Key) float64 {
	var value float64
	if ebiten.IsKeyPressed(negative) {
		value -= 1
	}
	if ebiten.IsKeyPressed(positive) {
		value += 1
	}
	return value
}
