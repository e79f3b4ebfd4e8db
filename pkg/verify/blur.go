package verify

import (
	"image"
	"image/color"
)

// toGray converts any decoded image to 8-bit grayscale.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// laplacianVariance estimates sharpness as the variance of the 3x3
// Laplacian response over the grayscale image. Low variance means few
// edges, i.e. a blurred capture.
func laplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
	}

	n := 0
	sum, sumSq := 0.0, 0.0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}
	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
