package checktable

import "errors"

var (
	ErrInvalidFilterMode = errors.New("invalid filter mode")
)
