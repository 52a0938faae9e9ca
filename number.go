package gosimplify

import (
	"math"
	"math/cmplx"
	"strconv"
)

// ============================================================
// Number — real or complex numeric value
// ============================================================

// RealTolerance is the relative tolerance used by Number.RealEq.
const RealTolerance = 1e-12

// Number is an immutable numeric value. The zero value is the real 0.
type Number struct{ re, im float64 }

func Real(x float64) Number         { return Number{re: x} }
func Complex(re, im float64) Number { return Number{re: re, im: im} }
func NaN() Number                   { return Number{re: math.NaN()} }

func (n Number) Re() float64            { return n.re }
func (n Number) Im() float64            { return n.im }
func (n Number) IsReal() bool           { return n.im == 0 }
func (n Number) IsZero() bool           { return n.re == 0 && n.im == 0 }
func (n Number) IsNaN() bool            { return math.IsNaN(n.re) || math.IsNaN(n.im) }
func (n Number) Complex128() complex128 { return complex(n.re, n.im) }

func (n Number) Add(o Number) Number { return Number{re: n.re + o.re, im: n.im + o.im} }
func (n Number) Sub(o Number) Number { return Number{re: n.re - o.re, im: n.im - o.im} }
func (n Number) Neg() Number         { return Number{re: -n.re, im: -n.im} }

func (n Number) Mul(o Number) Number {
	if n.IsReal() && o.IsReal() {
		return Real(n.re * o.re)
	}
	return fromComplex(n.Complex128() * o.Complex128())
}

// Div returns NaN when o is exactly zero.
func (n Number) Div(o Number) Number {
	if o.IsZero() {
		return NaN()
	}
	if n.IsReal() && o.IsReal() {
		return Real(n.re / o.re)
	}
	return fromComplex(n.Complex128() / o.Complex128())
}

// Pow stays on the real line whenever the real result is defined, so a
// negative base only leaves it for a non-integer exponent.
func (n Number) Pow(o Number) Number {
	if n.IsNaN() || o.IsNaN() {
		return NaN()
	}
	if n.IsReal() && o.IsReal() && (n.re >= 0 || o.re == math.Trunc(o.re)) {
		return Real(math.Pow(n.re, o.re))
	}
	return fromComplex(cmplx.Pow(n.Complex128(), o.Complex128()))
}

// RealEq reports whether n is real and within RealTolerance of x.
func (n Number) RealEq(x float64) bool {
	if n.im != 0 || math.IsNaN(n.re) {
		return false
	}
	if n.re == x {
		return true
	}
	scale := math.Max(1, math.Abs(x))
	return math.Abs(n.re-x) <= RealTolerance*scale
}

// Equal is exact component equality, except that any two NaNs are equal.
func (n Number) Equal(o Number) bool {
	if n.IsNaN() || o.IsNaN() {
		return n.IsNaN() && o.IsNaN()
	}
	return n.re == o.re && n.im == o.im
}

func (n Number) String() string {
	if n.IsNaN() {
		return "NaN"
	}
	re, im := n.re, n.im
	if re == 0 {
		re = 0
	}
	if im == 0 {
		im = 0
	}
	if im == 0 {
		return strconv.FormatFloat(re, 'g', -1, 64)
	}
	return strconv.FormatComplex(complex(re, im), 'g', -1, 128)
}

func fromComplex(c complex128) Number { return Number{re: real(c), im: imag(c)} }
