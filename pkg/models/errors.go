package models

import "errors"

var (
	ErrInvalidPluginName    = errors.New("invalid check plugin name")
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrInvalidDiscoveryMode = errors.New("invalid discovery mode")
	ErrInvalidOnError       = errors.New("invalid on_error policy")
	errInvalidDuration      = errors.New("invalid duration")
)
