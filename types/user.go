package types

import "time"

// Roles accepted for a user.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// User represents a managed user record.
type User struct {
	// ID is the unique identifier of the user. It is assigned by the
	// database and never reused.
	ID int64 `json:"id"`

	// Username is the login name chosen for the user.
	Username string `json:"username"`

	// Email is the user's email address. It is unique across all users.
	Email string `json:"email"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name"`

	// Role indicates the user's role within the system
	// ("admin", "user" or "guest").
	Role string `json:"role"`

	// Active reports whether the account is enabled.
	Active bool `json:"active"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user.
	// It is nil until the user is updated for the first time.
	UpdatedAt *time.Time `json:"updated_at"`
}

// UserCreate is the payload for creating a user.
type UserCreate struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`

	// Active defaults to true when omitted.
	Active *bool `json:"active"`
}

// User builds the record to persist from the payload.
func (c UserCreate) User() User {
	active := true
	if c.Active != nil {
		active = *c.Active
	}
	return User{
		Username:  c.Username,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      c.Role,
		Active:    active,
	}
}

// UserPatch is a partial update. Nil fields are left unchanged.
type UserPatch struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}

// Apply returns user with every field supplied in the patch replaced.
// Identity and timestamps are never touched.
func (p UserPatch) Apply(user User) User {
	if p.Username != nil {
		user.Username = *p.Username
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.FirstName != nil {
		user.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		user.LastName = *p.LastName
	}
	if p.Role != nil {
		user.Role = *p.Role
	}
	if p.Active != nil {
		user.Active = *p.Active
	}
	return user
}
