package account

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest represents the admin login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return validate.Struct(r)
}

// ChangePasswordRequest changes the logged-in user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func (r ChangePasswordRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.CurrentPassword == r.NewPassword {
		return fmt.Errorf("new password must differ from the current password")
	}
	return nil
}

// ProfileUpdateRequest updates the logged-in user's own profile fields.
type ProfileUpdateRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=17"`
}

func (r ProfileUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// UserUpdateRequest is the admin-side update of another user's account flags.
type UserUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=17"`
	IsActive  *bool   `json:"is_active"`
	IsStaff   *bool   `json:"is_staff"`
	IsAdmin   *bool   `json:"is_admin"`
}

func (r UserUpdateRequest) Validate() error {
	return validate.Struct(r)
}
