package email

import (
	"errors"
	"fmt"
)

var ErrDisabled = errors.New("email: delivery is disabled")

// InvalidMessageError names the part of a message that is missing.
type InvalidMessageError struct{ Missing string }

func (e *InvalidMessageError) Error() string { return "email: message has no " + e.Missing }

// DeliveryError wraps an SMTP failure for one message.
type DeliveryError struct {
	Kind       Kind
	Recipients int
	Err        error
}

func (e *DeliveryError) Error() string {
	kind := e.Kind
	if kind == "" {
		kind = "message"
	}
	return fmt.Sprintf("email: delivering %s to %d recipient(s): %v", kind, e.Recipients, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
