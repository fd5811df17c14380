package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/Emiliocodings/ServiceUsers/types"
)

func validCreate() types.UserCreate {
	return types.UserCreate{
		Username:  "newuser",
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "User",
		Role:      types.RoleUser,
	}
}

func strPtr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		mutate    func(*types.UserCreate)
		wantField string
	}{
		{name: "valid", mutate: func(*types.UserCreate) {}},
		{name: "plus and dots in email", mutate: func(u *types.UserCreate) { u.Email = "first.last+tag@mail.example.co" }},
		{name: "three character username", mutate: func(u *types.UserCreate) { u.Username = "abc" }},
		{name: "fifty character username", mutate: func(u *types.UserCreate) { u.Username = strings.Repeat("a", 50) }},
		{name: "multibyte username counts characters", mutate: func(u *types.UserCreate) { u.Username = "ñññ" }},
		{name: "short username", mutate: func(u *types.UserCreate) { u.Username = "te" }, wantField: "username"},
		{name: "long username", mutate: func(u *types.UserCreate) { u.Username = strings.Repeat("a", 51) }, wantField: "username"},
		{name: "email without at", mutate: func(u *types.UserCreate) { u.Email = "invalid-email" }, wantField: "email"},
		{name: "email without tld", mutate: func(u *types.UserCreate) { u.Email = "user@example" }, wantField: "email"},
		{name: "email with one letter tld", mutate: func(u *types.UserCreate) { u.Email = "user@example.c" }, wantField: "email"},
		{name: "missing email", mutate: func(u *types.UserCreate) { u.Email = "" }, wantField: "email"},
		{name: "empty first name", mutate: func(u *types.UserCreate) { u.FirstName = "" }, wantField: "first_name"},
		{name: "long last name", mutate: func(u *types.UserCreate) { u.LastName = strings.Repeat("x", 51) }, wantField: "last_name"},
		{name: "unknown role", mutate: func(u *types.UserCreate) { u.Role = "invalid_role" }, wantField: "role"},
		{name: "role is case sensitive", mutate: func(u *types.UserCreate) { u.Role = "Admin" }, wantField: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreate()
			tt.mutate(&in)

			err := v.ValidateCreate(in)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid payload, got %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(verr.Fields) != 1 || verr.Fields[0].Field != tt.wantField {
				t.Fatalf("expected single error on %q, got %+v", tt.wantField, verr.Fields)
			}
		})
	}
}

func TestValidateCreateReportsEveryField(t *testing.T) {
	err := NewValidator().ValidateCreate(types.UserCreate{})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 5 {
		t.Fatalf("expected 5 field errors, got %+v", verr.Fields)
	}
	if verr.Fields[1].Message != "Invalid email format" {
		t.Fatalf("unexpected email message: %q", verr.Fields[1].Message)
	}
}

func TestValidatePatch(t *testing.T) {
	v := NewValidator()

	if err := v.ValidatePatch(types.UserPatch{}); err != nil {
		t.Fatalf("empty patch should be valid, got %v", err)
	}
	if err := v.ValidatePatch(types.UserPatch{FirstName: strPtr("Updated"), LastName: strPtr("Name")}); err != nil {
		t.Fatalf("expected valid patch, got %v", err)
	}

	err := v.ValidatePatch(types.UserPatch{
		Username: strPtr("ab"),
		Email:    strPtr("nope"),
		Role:     strPtr("root"),
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		got = append(got, f.Field)
	}
	if strings.Join(got, ",") != "username,email,role" {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("role", "Role must be one of: admin, user, guest")
	if err.Error() != "validation failed: role: Role must be one of: admin, user, guest" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
