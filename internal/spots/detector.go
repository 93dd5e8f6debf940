// Package spots locates grid spots in an image for the automatic grid
// definition mode. Detection is a grayscale threshold/morphology pipeline:
// blobs in the expected size range become candidate spot centers, which
// the grid fitter then snaps onto a regular lattice.
package spots

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"gridviz/pkg/colorutil"
	"gridviz/pkg/geometry"
)

// Params controls spot detection.
type Params struct {
	// Spot diameter bounds in pixels.
	MinDiameter int
	MaxDiameter int

	// Binary threshold (0-255). Zero selects Otsu's method.
	Threshold int

	// Detect dark spots on a light background instead of the reverse.
	DarkOnLight bool

	// Maximum mean saturation of a blob (OpenCV 0-255 scale). Strongly
	// colored blobs are usually debris or ink, not spots. Zero disables
	// the check.
	MaxSaturation float64

	// Minimum circularity (4*pi*area/perimeter^2), 0-1.
	CircularityMin float64
}

// DefaultParams returns detection parameters suitable for scanned plates.
func DefaultParams() Params {
	return Params{
		MinDiameter:    8,
		MaxDiameter:    120,
		Threshold:      0,
		DarkOnLight:    false,
		MaxSaturation:  0,
		CircularityMin: 0.5,
	}
}

// Result holds detected spot centers and detection diagnostics.
type Result struct {
	Centers  []geometry.Point2D
	Rejected int // Blobs discarded by the size/shape/color filters
}

// Detect finds spot centers in a Go image.
func Detect(srcImg image.Image, params Params) (*Result, error) {
	mat, err := imageToMat(srcImg)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	return DetectMat(mat, params)
}

// DetectMat finds spot centers in an OpenCV Mat (8UC3, BGR).
func DetectMat(srcImg gocv.Mat, params Params) (*Result, error) {
	if srcImg.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	if params.MinDiameter <= 0 || params.MaxDiameter < params.MinDiameter {
		return nil, fmt.Errorf("invalid diameter range %d-%d", params.MinDiameter, params.MaxDiameter)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(srcImg, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	defer mask.Close()
	threshType := gocv.ThresholdBinary
	if params.DarkOnLight {
		threshType = gocv.ThresholdBinaryInv
	}
	if params.Threshold > 0 {
		gocv.Threshold(blurred, &mask, float32(params.Threshold), 255, threshType)
	} else {
		gocv.Threshold(blurred, &mask, 0, 255, threshType|gocv.ThresholdOtsu)
	}

	// Close small gaps inside spots, then drop speckle.
	closeKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 5, Y: 5})
	defer closeKernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, closeKernel)

	openKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 3, Y: 3})
	defer openKernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, openKernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := math.Pi * math.Pow(float64(params.MinDiameter)/2, 2)
	maxArea := math.Pi * math.Pow(float64(params.MaxDiameter)/2, 2)

	result := &Result{}
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		area := gocv.ContourArea(contour)
		if area < minArea || area > maxArea {
			result.Rejected++
			continue
		}

		perimeter := gocv.ArcLength(contour, true)
		if perimeter > 0 && params.CircularityMin > 0 {
			circularity := 4 * math.Pi * area / (perimeter * perimeter)
			if circularity < params.CircularityMin {
				result.Rejected++
				continue
			}
		}

		center := contourCentroid(contour)

		if params.MaxSaturation > 0 {
			if meanSaturation(srcImg, center, float64(params.MinDiameter)/2) > params.MaxSaturation {
				result.Rejected++
				continue
			}
		}

		result.Centers = append(result.Centers, center)
	}

	// Stable ordering for callers and tests: top-to-bottom, left-to-right.
	sort.Slice(result.Centers, func(i, j int) bool {
		if result.Centers[i].Y != result.Centers[j].Y {
			return result.Centers[i].Y < result.Centers[j].Y
		}
		return result.Centers[i].X < result.Centers[j].X
	})

	return result, nil
}

// contourCentroid returns the mean position of the contour points.
func contourCentroid(contour gocv.PointVector) geometry.Point2D {
	pts := make([]geometry.Point2D, contour.Size())
	for i := range pts {
		p := contour.At(i)
		pts[i] = geometry.Point2D{X: float64(p.X), Y: float64(p.Y)}
	}
	return geometry.Centroid(pts)
}

// meanSaturation samples the mean HSV saturation of a disc around center.
func meanSaturation(srcImg gocv.Mat, center geometry.Point2D, radius float64) float64 {
	if radius < 1 {
		radius = 1
	}
	cx, cy := int(center.X), int(center.Y)
	r := int(radius)

	var sum float64
	var count int
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if x < 0 || y < 0 || x >= srcImg.Cols() || y >= srcImg.Rows() {
				continue
			}
			dx, dy := float64(x-cx), float64(y-cy)
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			b := float64(srcImg.GetUCharAt(y, x*3+0))
			g := float64(srcImg.GetUCharAt(y, x*3+1))
			rr := float64(srcImg.GetUCharAt(y, x*3+2))
			_, s, _ := colorutil.RGBToHSV(rr, g, b)
			sum += s
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// imageToMat converts a Go image to an 8UC3 BGR Mat.
func imageToMat(srcImg image.Image) (gocv.Mat, error) {
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := srcImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert from 16-bit to 8-bit and BGR order for OpenCV
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}
