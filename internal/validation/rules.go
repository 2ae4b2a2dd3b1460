// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/orders/internal/errors"
)

// MaxOrderItems bounds the number of lines accepted in one order request.
const MaxOrderItems = 100

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// PositiveID validates that an identifier is an integer greater than zero.
var PositiveID = validation.By(func(value interface{}) error {
	var n int64
	switch v := value.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case *int64:
		if v == nil {
			return nil // Let Required handle nil pointers
		}
		n = *v
	default:
		return validation.NewError("validation_positive_id_type", "must be an integer")
	}
	if n <= 0 {
		return validation.NewError("validation_positive_id", "must be a positive integer")
	}
	return nil
})

// PositiveQuantity validates that a quantity is an integer greater than zero.
var PositiveQuantity = validation.By(func(value interface{}) error {
	q, ok := value.(int)
	if !ok {
		return validation.NewError("validation_quantity_type", "must be an integer")
	}
	if q <= 0 {
		return validation.NewError("validation_quantity", "must be greater than zero")
	}
	return nil
})

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
