package auth

import "errors"

var (
	ErrInvalidCapability = errors.New("invalid capability")
	ErrInvalidOwnerID    = errors.New("invalid owner id")
	ErrInvalidToken      = errors.New("invalid auth token")
	ErrTokenExpired      = errors.New("auth token expired")
	ErrInvalidFlowURL    = errors.New("invalid auth flow url")
	ErrSealed            = errors.New("cannot open sealed token")
)
