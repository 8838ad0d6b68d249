package image

import (
	"image"

	"github.com/esimov/colorquant"

	"github.com/jmylchreest/munsellkit/internal/colour"
)

// QuantizeExtractor finds dominant colours by quantising the image to a
// small palette and counting how often each palette entry is used.
type QuantizeExtractor struct {
	// step is the pixel stride used when counting the quantised image.
	step int
}

// NewQuantizeExtractor creates a QuantizeExtractor with default settings.
func NewQuantizeExtractor() *QuantizeExtractor {
	return &QuantizeExtractor{step: 1}
}

// Extract quantises img to count colours and ranks them by pixel count.
func (e *QuantizeExtractor) Extract(img image.Image, count int) ([]Swatch, error) {
	if err := validateCount(img, count); err != nil {
		return nil, err
	}

	b := img.Bounds()
	out := image.NewNRGBA(b)
	colorquant.NoDither.Quantize(img, out, count, false, true)

	step := max(e.step, 1)
	counts := make(map[colour.RGB]int)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			counts[colour.ToRGB(out.At(x, y))]++
		}
	}

	return rankSwatches(counts, count), nil
}
