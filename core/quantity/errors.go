package quantity

import (
	"errors"
	"fmt"
)

// ErrUnknownQuantity is the sentinel wrapped by all registry rejections.
var ErrUnknownQuantity = errors.New("unknown quantity")

// QuantityError reports a requested name outside the closed vocabulary.
type QuantityError struct {
	Name string
	Role string // "input" or "output"
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("unknown quantity: %q is not a valid %s", e.Name, e.Role)
}

func (e *QuantityError) Unwrap() error { return ErrUnknownQuantity }
