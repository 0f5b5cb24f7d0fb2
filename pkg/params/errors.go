package params

import "errors"

var (
	ErrCompile     = errors.New("parameter expression does not compile")
	ErrNotConcrete = errors.New("parameter expression is not concrete")
)
