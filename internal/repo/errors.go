package repo

import "errors"

var (
	ErrNotFound   = errors.New("record not found")
	ErrStageOrder = errors.New("visit survey stage out of order")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
