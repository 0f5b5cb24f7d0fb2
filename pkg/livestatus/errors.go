package livestatus

import "errors"

var (
	ErrUnavailable       = errors.New("livestatus unavailable")
	ErrQueryFailed       = errors.New("livestatus query failed")
	ErrMalformedResponse = errors.New("malformed livestatus response")
)
