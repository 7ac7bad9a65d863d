package dashboard

import "errors"

var (
	// ErrResourceExhausted is returned by Dispatch when every unit is deployed.
	ErrResourceExhausted = errors.New("no resources available")
	ErrInvalidFilter     = errors.New("invalid severity filter")
)
