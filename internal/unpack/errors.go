package unpack

import "errors"

var (
	// ErrMissingChunk is returned when a group's sequence indices have a gap.
	ErrMissingChunk = errors.New("missing chunk")
	// ErrMetadataMismatch is returned when chunk metadata disagrees across a
	// group or a record cannot be decoded.
	ErrMetadataMismatch = errors.New("inconsistent chunk metadata")
	// ErrIntegrity is returned when the merged file fails the declared hash
	// or size check.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrOutputExists is returned when the original filename already exists
	// in the target directory and overwriting was not requested.
	ErrOutputExists = errors.New("output file already exists")
)
