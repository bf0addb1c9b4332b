package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ambikamber/ambikamber.com/internal/core/domain"
)

// ValidationError names the first field a form got wrong.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string       { return fmt.Sprintf("%s: %s", e.Field, e.Message) }
func (e *ValidationError) UserMessage() string { return e.Message }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("digits", validateDigits)
	return v
}

// validateDigits accepts exactly N ASCII digits, N being the tag parameter.
func validateDigits(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	s := fl.Field().String()
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeAddress trims every field and defaults the country.
func NormalizeAddress(a domain.ShippingAddress) domain.ShippingAddress {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "India"
	}
	return a
}

// ValidateAddress reports missing fields before malformed ones, each group
// in form order.
func ValidateAddress(a domain.ShippingAddress) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate address: %w", err)
	}

	first := fieldErrs[0]
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			first = fe
			break
		}
	}
	return &ValidationError{Field: strings.ToLower(first.Field()), Message: addressMessage(first)}
}

func addressMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	if fe.Tag() == "required" {
		return "Please enter " + field
	}
	switch field {
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid 10-digit phone number"
	case "pincode":
		return "Please enter a valid 6-digit pincode"
	}
	return "Please enter a valid " + field
}
