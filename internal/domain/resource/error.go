package resource

import "errors"

var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrInvalidData  = errors.New("invalid resource data")
)
