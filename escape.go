package fractile

import "math/cmplx"

// MinEscapeRadius is the smallest escape radius the colour smoothing accepts.
// Below it ln(|z|)/ln(R) can reach 1 or less for escaped points.
const MinEscapeRadius = 3.0

// EscapeResult is the outcome of iterating a single point.
type EscapeResult struct {
	// Iterations is the number of steps taken, in [0, max iterations].
	// It equals the cap when the point never escaped.
	Iterations uint32

	// Magnitude is |z| after the last step. It is at least the escape
	// radius for escaped points.
	Magnitude float64
}

// Escape iterates z = z^exponent + c starting from z = c until |z| reaches
// escapeRadius or maxIterations steps have been taken.
//
// Escape is pure and total over finite inputs; non-finite c is out of contract.
func Escape(c complex128, maxIterations uint32, escapeRadius float64, exponent uint32) EscapeResult {
	z := c
	mag := cmplx.Abs(z)
	var iter uint32
	for mag < escapeRadius && iter < maxIterations {
		iter++
		z = powu(z, exponent) + c
		mag = cmplx.Abs(z)
	}
	return EscapeResult{Iterations: iter, Magnitude: mag}
}

// Escaped reports whether the point left the escape radius before the cap.
func (r EscapeResult) Escaped(maxIterations uint32) bool {
	return r.Iterations < maxIterations
}

// powu raises z to a non-negative integer power by square-and-multiply.
// cmplx.Pow goes through exp/log and loses exactness for small integer powers.
func powu(z complex128, n uint32) complex128 {
	switch n {
	case 0:
		return 1
	case 1:
		return z
	case 2:
		return z * z
	case 3:
		return z * z * z
	}
	result := complex(1, 0)
	for n > 0 {
		if n&1 == 1 {
			result *= z
		}
		n >>= 1
		if n > 0 {
			z *= z
		}
	}
	return result
}
