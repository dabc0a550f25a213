package procurement

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidCase marks a case rejected by Validate.
var ErrInvalidCase = errors.New("invalid case")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects a case that does not have the expected shape.
// The returned error wraps ErrInvalidCase and validator.ValidationErrors.
func Validate(c Case) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}
	return nil
}
