package fingerprint

import "errors"

var (
	ErrInvalidConfiguration = errors.New("invalid fingerprint configuration")
	ErrSampleRateMismatch   = errors.New("sample rate does not match configuration")
	ErrNonFiniteValue       = errors.New("non-finite value in spectral data")
	ErrLengthMismatch       = errors.New("fingerprint signatures differ in length")
	ErrImageShape           = errors.New("spectral image shape does not match configuration")
)
