package event

import "errors"

var ErrInvalidEvent = errors.New("invalid event")
