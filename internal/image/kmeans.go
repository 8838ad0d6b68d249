package image

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/jmylchreest/munsellkit/internal/colour"
)

// KMeansExtractor implements colour extraction using k-means clustering.
type KMeansExtractor struct {
	maxIterations int
	convergence   float64
	maxSamples    int
	seed          uint64
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
// Clustering is seeded so the same image always yields the same swatches.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		maxIterations: 20,
		convergence:   2.0,
		maxSamples:    2000,
		seed:          1,
	}
}

// Extract clusters sampled pixels into count groups and returns the
// cluster centres weighted by cluster size.
func (e *KMeansExtractor) Extract(img image.Image, count int) ([]Swatch, error) {
	if err := validateCount(img, count); err != nil {
		return nil, err
	}

	pixels := e.samplePixels(img)

	unique := make(map[colour.RGB]int)
	for _, p := range pixels {
		unique[colour.RGB{R: uint8(p.R), G: uint8(p.G), B: uint8(p.B)}]++
	}

	// Fewer distinct colours than requested: no clustering needed.
	if count >= len(unique) {
		return rankSwatches(unique, count), nil
	}

	centroids, sizes := e.kmeans(pixels, count)

	counts := make(map[colour.RGB]int, len(centroids))
	for i, c := range centroids {
		if sizes[i] == 0 {
			continue
		}
		rgb := colour.RGB{R: roundByte(c.R), G: roundByte(c.G), B: roundByte(c.B)}
		counts[rgb] += sizes[i]
	}
	return rankSwatches(counts, count), nil
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixels returns every pixel of small images and a grid sample of
// roughly maxSamples pixels for large ones.
func (e *KMeansExtractor) samplePixels(img image.Image) []point3D {
	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()

	step := 1
	if totalPixels > e.maxSamples {
		step = max(int(math.Sqrt(float64(totalPixels)/float64(e.maxSamples))), 1)
	}

	points := make([]point3D, 0, min(totalPixels, e.maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			rgb := colour.ToRGB(img.At(x, y))
			points = append(points, point3D{R: float64(rgb.R), G: float64(rgb.G), B: float64(rgb.B)})
			if len(points) >= e.maxSamples {
				return points
			}
		}
	}
	return points
}

// kmeans clusters points into k groups, returning centroids and the number
// of points assigned to each.
func (e *KMeansExtractor) kmeans(points []point3D, k int) ([]point3D, []int) {
	rng := rand.New(rand.NewPCG(e.seed, uint64(len(points))))
	centroids := initialCentroids(rng, points, k)
	assignments := make([]int, len(points))

	for range e.maxIterations {
		changed := 0
		for i, point := range points {
			nearest := nearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Fewer than 1% of points moved cluster.
		if float64(changed)/float64(len(points)) < 0.01 {
			break
		}

		next := recalculateCentroids(rng, points, assignments, k)
		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(next[i])
		}
		centroids = next

		if movement/float64(k) < e.convergence {
			break
		}
	}

	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}
	return centroids, sizes
}

// initialCentroids picks k starting centroids with k-means++ seeding.
func initialCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.IntN(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, point := range points {
			d := point.distance(centroids[nearestCentroid(point, centroids)])
			distances[i] = d * d
			total += distances[i]
		}

		if total == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}
	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a point.
func nearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the mean of its points.
// Empty clusters are reseeded from a random point.
func recalculateCentroids(rng *rand.Rand, points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)
	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := range k {
		if counts[i] > 0 {
			n := float64(counts[i])
			centroids[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
		} else {
			centroids[i] = points[rng.IntN(len(points))]
		}
	}
	return centroids
}

func roundByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
