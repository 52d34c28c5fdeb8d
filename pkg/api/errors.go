package api

import "errors"

var (
	ErrUnauthorized   = errors.New("unauthorized: user not authenticated")
	ErrInvalidRequest = errors.New("invalid request body")
)
