package ebitendriver

import (
	"math"

	ebimath "github.com/edwinsyarief/ebi-math"
	"github.com/edwinsyarief/cinemachine"
	"github.com/edwinsyarief/cinemachine/utils"
	"github.com/go-gl/mathgl/mgl64"
)

// Projects a world point through the camera state onto a viewport of
// the given size, in pixels from its top-left corner. Returns false
// for points behind the near clip plane.
func Project(state *cinemachine.CameraState, point mgl64.Vec3, width, height float64) (ebimath.Vector, bool) {
	lens := state.Lens
	local := state.FinalOrientation().Inverse().Rotate(point.Sub(state.FinalPosition()))
	if local[2] < lens.NearClipPlane {
		return ebimath.Vector{}, false
	}

	halfHeight := lens.OrthographicSize
	if !lens.Orthographic {
		halfHeight = local[2] * math.Tan(mgl64.DegToRad(lens.FieldOfView)/2)
	}
	if halfHeight < utils.Epsilon {
		return ebimath.Vector{}, false
	}
	aspect := lens.Aspect
	if aspect < utils.Epsilon {
		aspect = 1
	}
	ndcX := local[0] / (halfHeight * aspect)
	ndcY := local[1] / halfHeight
	return ebimath.V((ndcX+1)/2*width, (1-ndcY)/2*height), true
}

// Maps a normalized screen rect to viewport pixels.
func ScreenRectToViewport(rect utils.ScreenRect, width, height float64) (x, y, w, h float64) {
	return rect.Min.X * width, rect.Min.Y * height, rect.Width() * width, rect.Height() * height
}

// Returns the largest centered area of the given aspect that fits in
// the viewport, as offsets and size in pixels.
func Letterbox(viewportWidth, viewportHeight int, aspect float64) (x, y, w, h int) {
	if aspect <= 0 || viewportWidth <= 0 || viewportHeight <= 0 {
		return 0, 0, viewportWidth, viewportHeight
	}
	viewportAspect := float64(viewportWidth) / float64(viewportHeight)
	switch {
	case viewportAspect > aspect: // horz margins
		xMargin := int((float64(viewportWidth) - aspect*float64(viewportHeight)) / 2.0)
		return xMargin, 0, viewportWidth - 2*xMargin, viewportHeight
	case viewportAspect < aspect: // vert margins
		yMargin := int((float64(viewportHeight) - float64(viewportWidth)/aspect) / 2.0)
		return 0, yMargin, viewportWidth, viewportHeight - 2*yMargin
	default:
		return 0, 0, viewportWidth, viewportHeight
	}
}
