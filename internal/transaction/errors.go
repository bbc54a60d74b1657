package transaction

import "errors"

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidPage   = errors.New("invalid page")
	ErrUnknownScheme = errors.New("unknown chart scheme")
)
