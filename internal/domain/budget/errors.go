package budget

import "errors"

// Sentinel kinds for budget configuration errors.
var (
	ErrInvalidBudget = errors.New("invalid budget entry")
)
