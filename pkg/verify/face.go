package verify

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// FaceDetector reports how many faces appear in an image. Webcam captures
// are low quality, so implementations should be tuned leniently.
type FaceDetector interface {
	Count(img image.Image) (int, error)
}

// PigoDetector runs the pigo cascade classifier with lenient parameters:
// a small minimum face size and a low quality threshold, tolerating
// webcam-grade document photos.
type PigoDetector struct {
	classifier *pigo.Pigo
}

const (
	faceMinSize     = 20
	faceMaxSize     = 1200
	faceShiftFactor = 0.1
	faceScaleFactor = 1.1
	faceClusterIoU  = 0.2
	faceMinQuality  = 3.0
)

// NewPigoDetector loads the binary cascade file.
func NewPigoDetector(cascadePath string) (*PigoDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("read cascade %s: %w", cascadePath, err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpack cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier}, nil
}

func (d *PigoDetector) Count(img image.Image) (int, error) {
	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols := src.Bounds().Dx()
	rows := src.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     faceMinSize,
		MaxSize:     faceMaxSize,
		ShiftFactor: faceShiftFactor,
		ScaleFactor: faceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, faceClusterIoU)

	n := 0
	for _, det := range dets {
		if det.Q >= faceMinQuality {
			n++
		}
	}
	return n, nil
}
