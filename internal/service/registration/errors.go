package registration

import "errors"

var (
	ErrEmptySender = errors.New("sender phone is required")
	ErrBusy        = errors.New("another registration from this sender is in progress")
)
