package discovery

import "errors"

var (
	ErrDuplicatePlugin     = errors.New("plugin already registered")
	ErrUnknownPlugin       = errors.New("unknown check plugin")
	ErrUnknownTransition   = errors.New("unknown check source")
	ErrEmptyDescription    = errors.New("empty service description")
	ErrHostNotFound        = errors.New("host not found")
	ErrDiscoveryDisabled   = errors.New("discovery check disabled")
	ErrInvalidFilterRegexp = errors.New("invalid service filter expression")
)
