package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator builds the request validator with the decimal comparison the
// domain structs reference in their validate tags.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("decimal_gt", decimalGT); err != nil {
		panic(err)
	}
	return v
}

// decimalGT implements `decimal_gt=<bound>` for decimal.Decimal fields.
func decimalGT(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	bound, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(bound)
}
