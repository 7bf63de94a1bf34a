// Package validator wraps go-playground/validator with the console's field
// names, gameroom-specific tags and human messages.
package validator

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Locations is the set of gameroom locations the HCCC API accepts.
var Locations = []string{"downtown", "uptown", "mall", "airport"}

// Roles is the set of account roles the HCCC API accepts.
var Roles = []string{"user", "cashier", "admin"}

var sortOrders = []string{"asc", "desc"}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterValidation("location", member(Locations, false))
	v.RegisterValidation("role", member(Roles, false))
	v.RegisterValidation("sort_order", member(sortOrders, true))
	return v
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func member(values []string, allowEmpty bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if v == "" {
			return allowEmpty
		}
		return slices.Contains(values, v)
	}
}

// messages renders one failed tag; the argument is the tag parameter.
var messages = map[string]func(param string) string{
	"required":   func(string) string { return "This field is required" },
	"email":      func(string) string { return "Invalid email format" },
	"url":        func(string) string { return "Invalid URL format" },
	"min":        func(p string) string { return "Value is too short (min: " + p + ")" },
	"max":        func(p string) string { return "Value is too long (max: " + p + ")" },
	"gt":         func(p string) string { return "Value must be greater than " + p },
	"gte":        func(p string) string { return "Value must be at least " + p },
	"lte":        func(p string) string { return "Value must be at most " + p },
	"ne":         func(p string) string { return "Value must not be " + p },
	"location":   func(string) string { return "Invalid location. Must be: " + strings.Join(Locations, ", ") },
	"role":       func(string) string { return "Invalid role. Must be: user, cashier, or admin" },
	"sort_order": func(string) string { return "Invalid sort order. Must be: asc or desc" },
}

// Validate checks s and returns one message per failing field, or nil.
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := "Invalid value"
		if render, ok := messages[fe.Tag()]; ok {
			msg = render(fe.Param())
		}
		out[fe.Field()] = msg
	}
	return out
}

// ValidateVar checks a single value against tag.
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
