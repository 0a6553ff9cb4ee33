package decode

import "errors"

var (
	// ErrTransport is returned when the decoding service cannot be reached.
	ErrTransport = errors.New("decode: transport failed")

	// ErrStatus is returned when the decoding service answers with a non-success status.
	ErrStatus = errors.New("decode: unexpected status")

	// ErrMalformed is returned when the response body is unparsable or has no events field.
	ErrMalformed = errors.New("decode: malformed response")
)
