package ogmios

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

func getValidator() *validator.Validate {
	validate := validator.New()

	if err := validate.RegisterValidation("hexbytes", func(fl validator.FieldLevel) bool {
		_, err := hex.DecodeString(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("failed to register hexbytes validation: %v", err))
	}
	return validate
}

var sharedValidator = sync.OnceValue(getValidator)

// validateParams checks request parameters before they reach the wire.
func validateParams(params any) error {
	if err := sharedValidator().Struct(params); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}
