package pns

import "errors"

var (
	ErrInvalidArgument   = errors.New("pns: invalid argument")
	ErrNotConnected      = errors.New("pns: not connected")
	ErrTransport         = errors.New("pns: transport error")
	ErrMalformedResponse = errors.New("pns: malformed response")
	ErrNak               = errors.New("pns: negative acknowledge")
	ErrShortFrame        = errors.New("pns: short frame")
	ErrProductMismatch   = errors.New("pns: product id mismatch")
)
