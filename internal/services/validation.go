package services

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ValidationHelper provides shared request-payload validation.
// It checks shape only (required, positive, well-formed); the business rules
// for amounts live in the ledger package.
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper.
// decimal.Decimal fields validate through their float value so the usual
// numeric tags (gt, gte) apply to them.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &ValidationHelper{validator: v}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}
