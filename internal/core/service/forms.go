package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dailyskills/marketplace/internal/core/domain"
)

// emailShape is the loose local@domain.tld check done on the client. The
// backend remains the authority on what an email is.
var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("form"), ","); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// LoginForm is what the login screen submits.
type LoginForm struct {
	Email    string `form:"email"    validate:"required,email_shape"`
	Password string `form:"password" validate:"required,min=6"`
}

// Validate reports every invalid field at once as a *domain.ValidationError.
func (f LoginForm) Validate() error {
	return validateForm(f)
}

// RegisterForm is what the registration screen submits.
type RegisterForm struct {
	Name            string      `form:"name"            validate:"required"`
	Email           string      `form:"email"           validate:"required,email_shape"`
	Password        string      `form:"password"        validate:"required,min=6"`
	ConfirmPassword string      `form:"confirmPassword" validate:"eqfield=Password"`
	Role            domain.Role `form:"userType"        validate:"required,oneof=worker employer"`
}

// Validate reports every invalid field at once as a *domain.ValidationError.
func (f RegisterForm) Validate() error {
	return validateForm(f)
}

var formMessages = map[string]string{
	"name.required":           "Name is required",
	"email.required":          "Email is required",
	"email.email_shape":       "Email is invalid",
	"password.required":       "Password is required",
	"password.min":            "Password must be at least 6 characters",
	"confirmPassword.eqfield": "Passwords do not match",
	"userType.required":       "Please select your account type",
	"userType.oneof":          "Please select your account type",
}

func validateForm(form any) error {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = formMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func formMessage(fe validator.FieldError) string {
	if msg, ok := formMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed validation (%s)", fe.Field(), fe.Tag())
}
