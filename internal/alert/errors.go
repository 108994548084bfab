package alert

import "errors"

// Sentinel kinds for alert delivery errors.
var (
	ErrAlertDelivery = errors.New("alert delivery failed")
)
