package trade

import "errors"

var (
	// --- Validation: stale or unknown references ---

	ErrInvalidGood     = errors.New("trade: invalid good")
	ErrInvalidLocation = errors.New("trade: invalid location")
	ErrInvalidQuantity = errors.New("trade: quantity must be positive")
	ErrUnknownMode     = errors.New("trade: unknown game mode")
	ErrUnknownVehicle  = errors.New("trade: unknown vehicle")

	// --- Resource: the player cannot afford or carry it ---

	ErrInsufficientFunds     = errors.New("trade: not enough money")
	ErrInsufficientInventory = errors.New("trade: not enough goods in inventory")
	ErrCapacityExceeded      = errors.New("trade: inventory capacity exceeded")

	// --- State: redundant or out-of-order actions ---

	ErrAlreadyThere    = errors.New("trade: already at this location")
	ErrLocationLocked  = errors.New("trade: location not unlocked")
	ErrAlreadyUnlocked = errors.New("trade: location already unlocked")
	ErrNotUnlockable   = errors.New("trade: location cannot be unlocked")
	ErrVehicleMaxed    = errors.New("trade: vehicle already at highest tier")
	ErrNotAnUpgrade    = errors.New("trade: vehicle would not add capacity")
)

// Kind classifies an engine failure for presentation.
type Kind string

const (
	KindValidation Kind = "validation"
	KindResource   Kind = "resource"
	KindState      Kind = "state"
	KindUnknown    Kind = "unknown"
)

var kinds = map[error]Kind{
	ErrInvalidGood:           KindValidation,
	ErrInvalidLocation:       KindValidation,
	ErrInvalidQuantity:       KindValidation,
	ErrUnknownMode:           KindValidation,
	ErrUnknownVehicle:        KindValidation,
	ErrInsufficientFunds:     KindResource,
	ErrInsufficientInventory: KindResource,
	ErrCapacityExceeded:      KindResource,
	ErrAlreadyThere:          KindState,
	ErrLocationLocked:        KindState,
	ErrAlreadyUnlocked:       KindState,
	ErrNotUnlockable:         KindState,
	ErrVehicleMaxed:          KindState,
	ErrNotAnUpgrade:          KindState,
}

// KindOf returns the failure class of err, matching wrapped sentinels.
func KindOf(err error) Kind {
	for sentinel, k := range kinds {
		if errors.Is(err, sentinel) {
			return k
		}
	}
	return KindUnknown
}
