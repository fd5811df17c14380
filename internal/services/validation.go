package services

import (
	"regexp"
	"strings"

	"github.com/Emiliocodings/ServiceUsers/types"
	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	usernameRule = "min=3,max=50"
	emailRule    = "max=255,user_email"
	nameRule     = "min=1,max=50"
	roleRule     = "oneof=" + types.RoleAdmin + " " + types.RoleUser + " " + types.RoleGuest

	usernameMessage = "Username must be between 3 and 50 characters"
	emailMessage    = "Invalid email format"
	nameMessage     = "Name must be between 1 and 50 characters"
	roleMessage     = "Role must be one of: admin, user, guest"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a payload fails field validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validator checks user payloads. Create and patch payloads share the
// same per-field checks.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("user_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

func (v *Validator) ValidateCreate(in types.UserCreate) error {
	var errs []FieldError
	errs = v.check(errs, "username", in.Username, usernameRule, usernameMessage)
	errs = v.check(errs, "email", in.Email, emailRule, emailMessage)
	errs = v.check(errs, "first_name", in.FirstName, nameRule, nameMessage)
	errs = v.check(errs, "last_name", in.LastName, nameRule, nameMessage)
	errs = v.check(errs, "role", in.Role, roleRule, roleMessage)
	return asError(errs)
}

// ValidatePatch only checks the fields present in the patch.
func (v *Validator) ValidatePatch(in types.UserPatch) error {
	var errs []FieldError
	if in.Username != nil {
		errs = v.check(errs, "username", *in.Username, usernameRule, usernameMessage)
	}
	if in.Email != nil {
		errs = v.check(errs, "email", *in.Email, emailRule, emailMessage)
	}
	if in.FirstName != nil {
		errs = v.check(errs, "first_name", *in.FirstName, nameRule, nameMessage)
	}
	if in.LastName != nil {
		errs = v.check(errs, "last_name", *in.LastName, nameRule, nameMessage)
	}
	if in.Role != nil {
		errs = v.check(errs, "role", *in.Role, roleRule, roleMessage)
	}
	return asError(errs)
}

func (v *Validator) check(errs []FieldError, field, value, rule, message string) []FieldError {
	if err := v.validate.Var(value, rule); err != nil {
		return append(errs, FieldError{Field: field, Message: message})
	}
	return errs
}

func asError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}
