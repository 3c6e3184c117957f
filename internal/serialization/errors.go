package serialization

import "github.com/pkg/errors"

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrPayloadTooLarge    = errors.New("payload exceeds maximum size")
	ErrMissingType        = errors.New("snapshot has no type")
)
