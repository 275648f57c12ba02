package manifest

import "errors"

var (
	// ErrDuplicateLayer is returned when two manifests declare the same
	// layer name.
	ErrDuplicateLayer = errors.New("duplicate layer")

	// ErrInvalidManifest is returned for manifests that parse but describe
	// an unusable layer.
	ErrInvalidManifest = errors.New("invalid manifest")
)
