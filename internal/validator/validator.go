package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is deliberately loose: something@something.something, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidationError maps each failing field (by its JSON name) to a message.
type ValidationError struct {
	Errors map[string]string
	// Rules records the rule each field failed, e.g. "required" or "simpleemail".
	Rules map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("field '%s': %s", field, e.Errors[field]))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Failed reports whether any field failed the given rule.
func (e *ValidationError) Failed(rule string) bool {
	for _, r := range e.Rules {
		if r == rule {
			return true
		}
	}
	return false
}

// Add records a failure found outside struct tags.
func (e *ValidationError) Add(field, rule, message string) {
	if e.Errors == nil {
		e.Errors = map[string]string{}
		e.Rules = map[string]string{}
	}
	e.Errors[field] = message
	e.Rules[field] = rule
}

// Validator wraps go-playground/validator with our rules and JSON field names.
type Validator struct {
	validate *validator.Validate
}

// New creates a new Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "simpleemail", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || IsEmail(value)
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate validates a struct and returns *ValidationError on rule failures.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := &ValidationError{}
	for _, fe := range validationErrors {
		out.Add(fe.Field(), fe.Tag(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email", "simpleemail":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters long", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "Must be a valid URL"
	default:
		return fmt.Sprintf("Invalid value (failed on '%s' rule)", fe.Tag())
	}
}
