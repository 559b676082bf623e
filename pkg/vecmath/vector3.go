// Package vecmath provides a float32 3-component vector for graphics and
// physics code.
package vecmath

import (
	"encoding/json"
	"fmt"
	"io"

	errorsmod "cosmossdk.io/errors"
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a point or direction in 3-space. The same three components are
// read as X/Y/Z, as R/G/B, or by index.
type Vector3 [3]float32

// New creates a vector from its components.
func New(x, y, z float32) Vector3 {
	return Vector3{x, y, z}
}

// X returns the first component.
func (v Vector3) X() float32 { return v[0] }

// Y returns the second component.
func (v Vector3) Y() float32 { return v[1] }

// Z returns the third component.
func (v Vector3) Z() float32 { return v[2] }

// R returns the first component read as a red channel.
func (v Vector3) R() float32 { return v[0] }

// G returns the second component read as a green channel.
func (v Vector3) G() float32 { return v[1] }

// B returns the third component read as a blue channel.
func (v Vector3) B() float32 { return v[2] }

// SetX writes the first component.
func (v *Vector3) SetX(f float32) { v[0] = f }

// SetY writes the second component.
func (v *Vector3) SetY(f float32) { v[1] = f }

// SetZ writes the third component.
func (v *Vector3) SetZ(f float32) { v[2] = f }

// Array returns the raw components.
func (v Vector3) Array() [3]float32 {
	return [3]float32(v)
}

// At returns component i (0 = X, 1 = Y, 2 = Z).
func (v Vector3) At(i int) (float32, error) {
	if i < 0 || i > 2 {
		return 0, errorsmod.Wrapf(ErrIndexOutOfRange, "index %d", i)
	}
	return v[i], nil
}

// MustAt is like At but panics on a bad index.
func (v Vector3) MustAt(i int) float32 {
	f, err := v.At(i)
	if err != nil {
		panic(err)
	}
	return f
}

// Set writes component i.
func (v *Vector3) Set(i int, f float32) error {
	if i < 0 || i > 2 {
		return errorsmod.Wrapf(ErrIndexOutOfRange, "index %d", i)
	}
	v[i] = f
	return nil
}

// Neg returns -v.
func (v Vector3) Neg() Vector3 {
	return Vector3{-v[0], -v[1], -v[2]}
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 {
	return Vector3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 {
	return Vector3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Scale returns s * v.
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{s * v[0], s * v[1], s * v[2]}
}

// Mul returns the component-wise product of v and w.
func (v Vector3) Mul(w Vector3) Vector3 {
	return Vector3{v[0] * w[0], v[1] * w[1], v[2] * w[2]}
}

// Div returns the component-wise quotient of v and w. Zero components of w
// give Inf or NaN.
func (v Vector3) Div(w Vector3) Vector3 {
	return Vector3{v[0] / w[0], v[1] / w[1], v[2] / w[2]}
}

// AddAssign adds w to v in place and returns v.
func (v *Vector3) AddAssign(w Vector3) *Vector3 {
	v[0] += w[0]
	v[1] += w[1]
	v[2] += w[2]
	return v
}

// SubAssign subtracts w from v in place and returns v.
func (v *Vector3) SubAssign(w Vector3) *Vector3 {
	v[0] -= w[0]
	v[1] -= w[1]
	v[2] -= w[2]
	return v
}

// NormalizeInPlace scales v to unit length. A zero vector becomes NaN.
func (v *Vector3) NormalizeInPlace() {
	l := Length(*v)
	v[0] /= l
	v[1] /= l
	v[2] /= l
}

// IsNaN reports whether any component is NaN.
func (v Vector3) IsNaN() bool {
	return math32.IsNaN(v[0]) || math32.IsNaN(v[1]) || math32.IsNaN(v[2])
}

// Max returns the largest component. NaN components are skipped; the result
// is NaN only when all three are NaN.
func (v Vector3) Max() float32 {
	return fmax(v[0], fmax(v[1], v[2]))
}

// Min returns the smallest component, skipping NaN like Max.
func (v Vector3) Min() float32 {
	return fmin(v[0], fmin(v[1], v[2]))
}

func fmax(a, b float32) float32 {
	switch {
	case math32.IsNaN(a):
		return b
	case math32.IsNaN(b):
		return a
	case a > b:
		return a
	}
	return b
}

func fmin(a, b float32) float32 {
	switch {
	case math32.IsNaN(a):
		return b
	case math32.IsNaN(b):
		return a
	case a < b:
		return a
	}
	return b
}

// String formats v as "(x, y, z)".
func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

// Dump writes v to w for debugging.
func (v Vector3) Dump(w io.Writer) {
	fmt.Fprintln(w, v.String())
}

// UnmarshalJSON decodes a JSON array of exactly three numbers. null leaves v
// unchanged.
func (v *Vector3) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var comps []float32
	if err := json.Unmarshal(data, &comps); err != nil {
		return err
	}
	if len(comps) != 3 {
		return errorsmod.Wrapf(ErrVectorLength, "got %d components", len(comps))
	}
	copy(v[:], comps)
	return nil
}

// R3 converts v to a gonum vector.
func (v Vector3) R3() r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// FromR3 converts a gonum vector, rounding to float32.
func FromR3(p r3.Vec) Vector3 {
	return Vector3{float32(p.X), float32(p.Y), float32(p.Z)}
}

// Scale returns s * v.
func Scale(s float32, v Vector3) Vector3 {
	return v.Scale(s)
}

// Dot returns a · b.
func Dot(a, b Vector3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross returns the right-handed cross product a × b.
func Cross(a, b Vector3) Vector3 {
	return Vector3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Mult returns the component-wise product of a and b.
func Mult(a, b Vector3) Vector3 {
	return a.Mul(b)
}

// LengthSq returns the squared length of v.
func LengthSq(v Vector3) float32 {
	return Dot(v, v)
}

// Length returns the Euclidean length of v.
func Length(v Vector3) float32 {
	return math32.Sqrt(LengthSq(v))
}

// Normalize returns v scaled to unit length. The zero vector yields NaN
// components; check with IsNaN.
func Normalize(v Vector3) Vector3 {
	n := v
	n.NormalizeInPlace()
	return n
}
