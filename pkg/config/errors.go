package config

import "errors"

var (
	errInvalidConfigPtr      = errors.New("config must be a non-nil pointer")
	errUnsupportedFormat     = errors.New("unsupported config file format")
	errAutochecksDirRequired = errors.New("paths.autochecks_dir is required")
	errUnknownNode           = errors.New("cluster node is not a configured host")
	errHostIsCluster         = errors.New("name is configured both as host and as cluster")
	errInvalidPattern        = errors.New("invalid pattern")

	// ErrEmptyDescription is returned when a description template yields nothing.
	ErrEmptyDescription = errors.New("empty service description")
	// ErrMissingItem is returned when a template expects an item the service lacks.
	ErrMissingItem = errors.New("service description template needs an item")
	ErrNotBound    = errors.New("world is not bound to a plugin catalog")
)
