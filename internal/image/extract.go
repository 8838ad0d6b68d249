package image

import (
	"fmt"
	"image"
	"sort"

	"github.com/jmylchreest/munsellkit/internal/colour"
)

// Swatch is a representative image colour with its share of the sampled pixels.
type Swatch struct {
	Colour colour.RGB `json:"rgb"`
	Weight float64    `json:"weight"`
}

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract returns up to count swatches ordered by descending weight.
	Extract(img image.Image, count int) ([]Swatch, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmQuantize reduces the image palette with colour quantisation
	// and ranks the resulting colours by pixel count.
	AlgorithmQuantize Algorithm = "quantize"

	// AlgorithmKMeans uses k-means clustering over sampled pixels.
	AlgorithmKMeans Algorithm = "kmeans"
)

// MaxColours is the largest swatch count an extractor accepts.
const MaxColours = 256

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmQuantize, AlgorithmKMeans}
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmQuantize, "":
		return NewQuantizeExtractor(), nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

func validateCount(img image.Image, count int) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", count)
	}
	if count > MaxColours {
		return fmt.Errorf("colour count too large: %d (maximum: %d)", count, MaxColours)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("no pixels found in image")
	}
	return nil
}

// rankSwatches converts pixel counts into weighted swatches, heaviest first.
// Ties are ordered by hex so results are stable.
func rankSwatches(counts map[colour.RGB]int, limit int) []Swatch {
	total := 0
	for _, n := range counts {
		total += n
	}

	swatches := make([]Swatch, 0, len(counts))
	for c, n := range counts {
		swatches = append(swatches, Swatch{Colour: c, Weight: float64(n) / float64(total)})
	}
	sort.Slice(swatches, func(i, j int) bool {
		if swatches[i].Weight != swatches[j].Weight {
			return swatches[i].Weight > swatches[j].Weight
		}
		return swatches[i].Colour.Hex() < swatches[j].Colour.Hex()
	})

	if len(swatches) > limit {
		swatches = swatches[:limit]
	}
	return swatches
}
