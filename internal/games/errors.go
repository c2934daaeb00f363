package games

import "errors"

var (
	ErrInsufficientFunds = errors.New("insufficient_funds")
	ErrDuplicateSession  = errors.New("duplicate_session")
	ErrSessionNotFound   = errors.New("session_not_found")
	ErrInvalidAction     = errors.New("invalid_action")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrBetOutOfRange     = errors.New("bet_out_of_range")
)
