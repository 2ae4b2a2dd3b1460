package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/orders/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("wraps as invalid input", func(t *testing.T) {
		err := WrapValidationError(errors.New("items: cannot be blank."))

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "items: cannot be blank.")
	})
}

func TestPositiveID(t *testing.T) {
	var nilID *int64
	one := int64(1)
	zero := int64(0)

	tests := []struct {
		name      string
		value     interface{}
		shouldErr bool
	}{
		{name: "int64 positive", value: int64(5)},
		{name: "int positive", value: 5},
		{name: "pointer positive", value: &one},
		{name: "nil pointer", value: nilID},
		{name: "zero", value: int64(0), shouldErr: true},
		{name: "negative", value: -1, shouldErr: true},
		{name: "pointer zero", value: &zero, shouldErr: true},
		{name: "string", value: "5", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, PositiveID)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPositiveQuantity(t *testing.T) {
	assert.NoError(t, validation.Validate(3, PositiveQuantity))
	assert.EqualError(t, validation.Validate(0, PositiveQuantity), "must be greater than zero")
	assert.Error(t, validation.Validate(-2, PositiveQuantity))
	assert.Error(t, validation.Validate("3", PositiveQuantity))
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "text", value: "Keyboard"},
		{name: "empty is skipped", value: ""},
		{name: "whitespace", value: "   ", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, NotBlank)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
