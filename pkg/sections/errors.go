package sections

import "errors"

var (
	ErrCorruptCache           = errors.New("corrupt section cache")
	ErrUnsupportedSNMPVersion = errors.New("unsupported SNMP version")
	ErrNoSNMPData             = errors.New("no SNMP data returned")
	ErrUnknownTable           = errors.New("unknown SNMP table")
)
