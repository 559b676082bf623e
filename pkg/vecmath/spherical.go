package vecmath

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/chewxy/math32"
)

// UpDirection selects the world axis treated as up by FromSphericalUp.
type UpDirection int

const (
	XUp UpDirection = iota
	YUp
	ZUp
)

func (u UpDirection) String() string {
	switch u {
	case XUp:
		return "x"
	case YUp:
		return "y"
	case ZUp:
		return "z"
	}
	return "invalid"
}

// Valid reports whether u is one of XUp, YUp or ZUp.
func (u UpDirection) Valid() bool {
	return u == XUp || u == YUp || u == ZUp
}

// ParseUpDirection accepts "x", "y" or "z", optionally suffixed with "_up".
func ParseUpDirection(s string) (UpDirection, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_up") {
	case "x":
		return XUp, nil
	case "y":
		return YUp, nil
	case "z":
		return ZUp, nil
	}
	return 0, errorsmod.Wrapf(ErrInvalidEnumValue, "up direction %q", s)
}

// FromSpherical converts (r, theta, phi) to cartesian with Z up. theta is the
// polar angle from +Z and phi the azimuth in the XY plane.
func FromSpherical(r, theta, phi float32) Vector3 {
	sinT, cosT := math32.Sin(theta), math32.Cos(theta)
	sinP, cosP := math32.Sin(phi), math32.Cos(phi)
	return Scale(r, Vector3{sinT * cosP, sinT * sinP, cosT})
}

// FromSphericalUp is FromSpherical with the axes relabeled for up. It does not
// rotate: YUp yields (y, z, x) and XUp yields (z, x, y) of the Z-up result.
func FromSphericalUp(r, theta, phi float32, up UpDirection) (Vector3, error) {
	d := FromSpherical(r, theta, phi)
	switch up {
	case ZUp:
		return d, nil
	case YUp:
		return Vector3{d[1], d[2], d[0]}, nil
	case XUp:
		return Vector3{d[2], d[0], d[1]}, nil
	}
	return Vector3{}, errorsmod.Wrapf(ErrInvalidEnumValue, "up direction %d", int(up))
}

// ToSpherical returns the polar angle and azimuth of v. The azimuth is
// atan2(y, z) of the unit vector.
func ToSpherical(v Vector3) (theta, phi float32) {
	unit := Normalize(v)
	theta = math32.Acos(unit[2])
	phi = math32.Atan2(unit[1], unit[2])
	return theta, phi
}
