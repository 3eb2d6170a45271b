package models

import (
	"strings"
	"time"
)

// bcrypt only looks at the first 72 bytes of a password.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// User is the stored account document. PasswordHash never leaves the server:
// it is excluded from JSON and handlers only ever serialize Profile.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

// UpdateProfileRequest is the body of PUT /profile. Every field is optional;
// a nil field is left untouched. ImageURL carries either a plain URL or an
// inline data:image/...;base64 payload.
type UpdateProfileRequest struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	ImageURL        *string `json:"imageUrl"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

// UserUpdate is the set of fields written by a single partial update.
type UserUpdate struct {
	Username     *string
	Email        *string
	ImageURL     *string
	PasswordHash *string
}

// IsEmpty reports whether the update touches no field.
func (u *UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.ImageURL == nil && u.PasswordHash == nil
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username == "" {
		errors["username"] = "Username is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < MinPasswordLength {
		errors["password"] = "Password must be at least 6 characters"
	} else if len(r.Password) > MaxPasswordLength {
		errors["password"] = "Password must be at most 72 bytes"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

// RotatesPassword reports whether both passwords were supplied. With only
// one of them the request is still valid and the password is left alone.
func (r *UpdateProfileRequest) RotatesPassword() bool {
	return present(r.CurrentPassword) && present(r.NewPassword)
}

func present(s *string) bool {
	return s != nil && *s != ""
}

// Validate only checks fields that were supplied.
func (r *UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		errors["username"] = "Username cannot be empty"
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		errors["email"] = "Email cannot be empty"
	}
	if r.RotatesPassword() {
		if len(*r.NewPassword) < MinPasswordLength {
			errors["newPassword"] = "Password must be at least 6 characters"
		} else if len(*r.NewPassword) > MaxPasswordLength {
			errors["newPassword"] = "Password must be at most 72 bytes"
		}
	}

	return errors
}
