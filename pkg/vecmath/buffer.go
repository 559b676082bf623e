package vecmath

import (
	errorsmod "cosmossdk.io/errors"
)

// Flatten packs vectors into an x, y, z, x, y, z, ... buffer, the layout used
// by vertex buffers of intersection libraries.
func Flatten(vs []Vector3) []float32 {
	buf := make([]float32, 0, 3*len(vs))
	for _, v := range vs {
		buf = append(buf, v[0], v[1], v[2])
	}
	return buf
}

// Unflatten is the inverse of Flatten.
func Unflatten(buf []float32) ([]Vector3, error) {
	if len(buf)%3 != 0 {
		return nil, errorsmod.Wrapf(ErrBufferLength, "got %d floats", len(buf))
	}
	vs := make([]Vector3, len(buf)/3)
	for i := range vs {
		copy(vs[i][:], buf[3*i:3*i+3])
	}
	return vs, nil
}
