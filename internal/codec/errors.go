package codec

import "errors"

var (
	ErrUnregisteredClass = errors.New("codec: unregistered class")
	ErrUnknownFormat     = errors.New("codec: unknown format")
	ErrMalformedDocument = errors.New("codec: malformed document")
)
