package vecmath

import (
	"github.com/chewxy/math32"
)

// basis builds {e1, e2, e3} around e1. e2 is always perpendicular to e1 and of
// unit length; e3 has the length of e1.
func basis(e1 Vector3) (e2, e3 Vector3) {
	if e1[1] == 0 && e1[2] == 0 {
		// Along X the YZ construction below degenerates to zero.
		if e1[0] >= 0 {
			e2 = Vector3{0, 1, 0}
		} else {
			e2 = Vector3{0, -1, 0}
		}
	} else {
		e2 = Normalize(Vector3{0, e1[2], -e1[1]})
	}
	e3 = Cross(e1, e2)
	return e2, e3
}

// MakeBiNormalTangent returns a tangent and binormal completing a right-handed
// frame around the normal n. Pass a unit normal for an orthonormal result.
func MakeBiNormalTangent(n Vector3) (tangent, binormal Vector3) {
	return basis(n)
}

// Rotate tilts source by theta towards the direction at azimuth phi around
// it.
func Rotate(source Vector3, theta, phi float32) Vector3 {
	e2, e3 := basis(source)

	sinP, cosP := math32.Sin(phi), math32.Cos(phi)
	e := Scale(cosP, e2).Add(Scale(sinP, e3))

	sinT, cosT := math32.Sin(theta), math32.Cos(theta)
	return Scale(cosT, source).Add(Scale(sinT, e))
}

// Reflect returns normalize(2(v·n)n - v), the reflection of v about the axis n.
// This is the negation of the mirror reflection v - 2(v·n)n.
func Reflect(v, n Vector3) Vector3 {
	return Normalize(Scale(2*Dot(v, n), n).Sub(v))
}
