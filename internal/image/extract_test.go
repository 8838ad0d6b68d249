package image

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/jmylchreest/munsellkit/internal/colour"
)

// twoToneImage returns a w x h image whose left `split` columns are a and
// the rest b.
func twoToneImage(w, h, split int, a, b color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < split {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

func TestExtractors(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img := twoToneImage(40, 10, 30, red, blue)

	for _, alg := range ValidAlgorithms() {
		t.Run(string(alg), func(t *testing.T) {
			ex, err := NewExtractor(alg)
			if err != nil {
				t.Fatalf("NewExtractor(%s) error = %v", alg, err)
			}
			swatches, err := ex.Extract(img, 2)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if len(swatches) != 2 {
				t.Fatalf("Extract() returned %d swatches, want 2", len(swatches))
			}

			total := 0.0
			for _, s := range swatches {
				total += s.Weight
			}
			if math.Abs(total-1) > 1e-9 {
				t.Errorf("weights sum to %v, want 1", total)
			}
			if swatches[0].Weight < swatches[1].Weight {
				t.Errorf("swatches not ordered by weight: %+v", swatches)
			}
			if math.Abs(swatches[0].Weight-0.75) > 0.05 {
				t.Errorf("dominant weight = %v, want about 0.75", swatches[0].Weight)
			}
			if d := channelDistance(swatches[0].Colour, colour.RGB{R: 255}); d > 8 {
				t.Errorf("dominant colour = %s, want close to red", swatches[0].Colour.Hex())
			}
		})
	}
}

func TestKMeansFewerUniqueColours(t *testing.T) {
	img := twoToneImage(4, 4, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255}, color.RGBA{R: 200, G: 100, B: 0, A: 255})
	swatches, err := NewKMeansExtractor().Extract(img, 8)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(swatches) != 2 {
		t.Fatalf("Extract() returned %d swatches, want 2", len(swatches))
	}
	if swatches[0].Colour.Hex() != "#0a141e" || swatches[1].Colour.Hex() != "#c86400" {
		t.Errorf("Extract() = %+v, want ties ordered by hex", swatches)
	}
}

func TestKMeansDeterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	a, err := NewKMeansExtractor().Extract(img, 4)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	b, err := NewKMeansExtractor().Extract(img, 4)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("runs returned %d and %d swatches", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("swatch %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExtractValidation(t *testing.T) {
	img := twoToneImage(2, 2, 1, color.RGBA{A: 255}, color.RGBA{R: 255, A: 255})
	tests := []struct {
		name  string
		img   image.Image
		count int
	}{
		{name: "nil image", img: nil, count: 2},
		{name: "zero count", img: img, count: 0},
		{name: "too many", img: img, count: MaxColours + 1},
		{name: "empty image", img: image.NewRGBA(image.Rectangle{}), count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, alg := range ValidAlgorithms() {
				extractor, err := NewExtractor(alg)
				if err != nil {
					t.Fatalf("NewExtractor(%s) error = %v", alg, err)
				}
				if _, err := extractor.Extract(tt.img, tt.count); err == nil {
					t.Errorf("%s Extract() expected error", alg)
				}
			}
		})
	}

	if _, err := NewExtractor("median"); err == nil {
		t.Error("NewExtractor(median) expected error")
	}
}

func channelDistance(a, b colour.RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
