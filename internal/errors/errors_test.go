package errors

import (
	stderrors "errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_IsInvalidInput(t *testing.T) {
	err := NewValidationError("gross_salary", "must not be negative")

	assert.True(t, stderrors.Is(err, ErrInvalidInput))
	assert.Equal(t, "gross_salary: must not be negative", err.Error())
}

func TestAsValidation_Wrapped(t *testing.T) {
	err := pkgerrors.Wrap(NewValidationError("deductions", "must be a number"), "decode request")

	v, ok := AsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, "deductions", v.Field)
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(ErrInvalidInput))
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewConfigError("TAX_SLABS", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "config TAX_SLABS: boom", err.Error())
}
