package vecmath

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace for errors registered by this package.
const ModuleName = "vecmath"

var (
	// ErrIndexOutOfRange is returned when a component index is outside {0, 1, 2}.
	ErrIndexOutOfRange = errorsmod.Register(ModuleName, 2, "component index out of range")

	// ErrInvalidEnumValue is returned for an unrecognized UpDirection.
	ErrInvalidEnumValue = errorsmod.Register(ModuleName, 3, "invalid enum value")

	// ErrBufferLength is returned when a flat buffer is not a whole number of vectors.
	ErrBufferLength = errorsmod.Register(ModuleName, 4, "buffer length is not a multiple of 3")

	// ErrVectorLength is returned when a decoded vector does not have three components.
	ErrVectorLength = errorsmod.Register(ModuleName, 5, "vector must have exactly 3 components")
)
