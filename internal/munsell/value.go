package munsell

import "math"

// ASTM D1535 fifth-order polynomial coefficients relating Munsell value V
// to luminance factor Y on a 0..100 scale.
var d1535 = [5]float64{1.1914, -0.22533, 0.23352, -0.020484, 0.00081939}

// YFromValue returns the luminance factor Y (0..100) for a Munsell value
// using the ASTM D1535 polynomial.
func YFromValue(v float64) float64 {
	y, pow := 0.0, v
	for _, c := range d1535 {
		y += c * pow
		pow *= v
	}
	return y
}

// yDerivative is dY/dV of the D1535 polynomial.
func yDerivative(v float64) float64 {
	d, pow := 0.0, 1.0
	for i, c := range d1535 {
		d += float64(i+1) * c * pow
		pow *= v
	}
	return d
}

// ValueFromY returns the Munsell value for a luminance factor Y (0..100),
// inverting the ASTM D1535 polynomial by Newton iteration. Y <= 0 yields 0.
func ValueFromY(y float64) float64 {
	if y <= 0 {
		return 0
	}

	// The polynomial is monotonic on [0, 10]; a cube-root start converges
	// in a handful of steps.
	v := 10 * math.Cbrt(y/100)
	for range 50 {
		step := (YFromValue(v) - y) / yDerivative(v)
		v -= step
		if v < 0 {
			v = 0
		}
		if math.Abs(step) < 1e-12 {
			break
		}
	}
	return v
}
