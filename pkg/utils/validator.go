package utils

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator so handlers can validate bound
// request structs with a single call.
type Validator struct {
	validate *validator.Validate
}

var (
	validatorOnce sync.Once
	validatorInst *Validator
)

// GetValidator returns the shared validator instance.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInst = &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	})
	return validatorInst
}

// Validate checks the struct tags and returns a readable error.
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
