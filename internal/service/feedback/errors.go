package feedback

import "errors"

var (
	ErrEmptyMessage = errors.New("feedback message is empty")
	ErrEmptySender  = errors.New("sender phone is required")
	ErrNotFound     = errors.New("feedback not found")
)
