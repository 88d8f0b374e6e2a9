package api

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUpstream     = errors.New("upstream service error")
	ErrUnauthorized = errors.New("unauthorized")
)
