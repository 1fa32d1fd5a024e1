// Package core defines sentinel errors.
package core

import "errors"

var (
	// Configuration errors
	ErrConfigInvalid = errors.New("strix: invalid configuration")

	// Window errors
	ErrWindowCapacity = errors.New("strix: window capacity must be positive")

	// Fleet errors
	ErrRosterEmpty = errors.New("strix: fleet roster is empty")

	// Packet errors
	ErrPayloadMalformed = errors.New("strix: payload is not decodable")
)
