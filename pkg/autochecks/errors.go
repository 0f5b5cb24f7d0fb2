package autochecks

import "errors"

var (
	// ErrCorruptAutochecks marks a persisted file that cannot be decoded.
	ErrCorruptAutochecks = errors.New("corrupt autochecks file")
	ErrCorruptHostLabels = errors.New("corrupt host labels file")
	ErrEmptyHostname     = errors.New("hostname is required")
	ErrInvalidHostname   = errors.New("hostname must not contain path separators")
	ErrLockTimeout       = errors.New("timed out waiting for autochecks lock")
)
