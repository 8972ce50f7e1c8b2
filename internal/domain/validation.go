package domain

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"storefront-console/pkg/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names, which is what the UI keys errors by.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		f, err := utils.ParseAmount(s)
		return s != "" && err == nil && f >= 0
	})
	_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 0
	})

	return v
}

// ValidateStruct runs the struct's validate tags and returns one message per field.
func ValidateStruct(s any) FormErrors {
	errs := FormErrors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		errs["_"] = "Invalid form data"
		return errs
	}
	for _, fe := range ve {
		if _, seen := errs[fe.Field()]; !seen {
			errs[fe.Field()] = messageForTag(fe.Tag(), fe.Param())
		}
	}
	return errs
}

// ValidateValue checks a single value against a tag expression.
func ValidateValue(value, tag string) string {
	err := validate.Var(value, tag)
	if err == nil {
		return ""
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return messageForTag(ve[0].Tag(), ve[0].Param())
	}
	return "Invalid value"
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "amount":
		return "Must be a non-negative number"
	case "count":
		return "Must be a whole number"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + param + " characters"
	case "max":
		return "Must be at most " + param + " characters"
	case "gte":
		return "Must be greater than or equal to " + param
	case "lte":
		return "Must be less than or equal to " + param
	case "oneof":
		return "Must be one of: " + param
	case "eqfield":
		return "Does not match " + param
	default:
		return "Invalid value"
	}
}
