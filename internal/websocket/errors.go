// internal/websocket/errors.go
package websocket

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrStoreRequired      = errors.New("store_id is required")
	ErrSessionUnavailable = errors.New("session store unavailable")
)
