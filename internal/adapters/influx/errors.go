package influx

import "errors"

var (
	ErrInvalidMetric = errors.New("invalid metric name")
	ErrInvalidRange  = errors.New("invalid time range")
	ErrMissingConfig = errors.New("influx configuration incomplete")
)
