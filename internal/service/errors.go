package service

import "errors"

// Domain error kinds. Handlers map these to HTTP statuses.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUserNotFound   = errors.New("no user registered with this phone")
	ErrNotLinked      = errors.New("user has no linked messaging account")
	ErrInvalidToken   = errors.New("invalid or unknown reset token")
	ErrExpired        = errors.New("one-time code has expired")
	ErrInvalidCode    = errors.New("one-time code does not match")
	ErrDeliveryFailed = errors.New("failed to deliver one-time code")
	ErrRateLimited    = errors.New("too many reset requests, try again later")
	ErrForbidden      = errors.New("actor is not authorized for this step")
	ErrNoActiveStep   = errors.New("document has no pending approval step")
	ErrConflict       = errors.New("document state no longer matches expected")
	ErrUpstream       = errors.New("upstream system request failed")
)
