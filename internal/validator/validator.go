package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polsommer/PanelHosting/internal/pricing"
)

// New creates a new validator instance with custom validations registered.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings such as a coupon code of "  "
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// "resource" accepts only kinds the store sells
	_ = v.RegisterValidation("resource", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return pricing.Valid(str)
	})

	return v
}
