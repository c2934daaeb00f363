package trade

import "errors"

var (
	ErrNotParticipant  = errors.New("not_participant")
	ErrSelfTrade       = errors.New("self_trade")
	ErrInvalidQuantity = errors.New("invalid_quantity")
)
