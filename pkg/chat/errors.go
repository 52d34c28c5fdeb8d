package chat

import "errors"

var (
	ErrEmptyQuestion = errors.New("question is required and must be a non-empty string")
	ErrMissingUserID = errors.New("user ID is required")
)
