package farm

import "errors"

// Error definitions for the accounting engine. Every operation checks its
// preconditions against these before mutating anything, so a returned error
// always means no state changed.
var (
	ErrOverflow              = errors.New("stake increase exceeds representable range")
	ErrInsufficientStake     = errors.New("withdrawal amount exceeds current stake")
	ErrPoolNotFound          = errors.New("pool index is not registered")
	ErrPoolInEmergency       = errors.New("pool is in emergency state")
	ErrPoolNotInEmergency    = errors.New("pool is not in emergency state")
	ErrPositionNotFound      = errors.New("no position registered for this pool and user")
	ErrDuplicateRegistration = errors.New("position already registered for this pool and user")
)
