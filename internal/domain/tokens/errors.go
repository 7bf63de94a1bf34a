package tokens

import "errors"

var (
	ErrDecrementDisabled = errors.New("decrement disabled below step size")
	ErrUnknownBalance    = errors.New("balance not loaded")
	ErrInvalidKey        = errors.New("userId, gameId and location are required")
	ErrWorkspaceClosed   = errors.New("token workspace closed")
)
