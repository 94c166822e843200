package model

import (
	"time"
)

type UserType string

const (
	UserTypeStandard     UserType = "STANDARD"
	UserTypeSuperAdmin   UserType = "SUPER_ADMIN"
	UserTypeVaccineAdmin UserType = "VACCINE_ADMIN"
)

// Privileged reports whether the type may only be granted by an administrator.
func (t UserType) Privileged() bool {
	return t == UserTypeSuperAdmin || t == UserTypeVaccineAdmin
}

func (t UserType) Valid() bool {
	switch t {
	case UserTypeStandard, UserTypeSuperAdmin, UserTypeVaccineAdmin:
		return true
	}
	return false
}

type UserDetails struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"` // YYYY-MM-DD
}

type User struct {
	ID          string      `json:"_id"`
	Email       string      `json:"email"`
	Password    string      `json:"-"` // bcrypt hash, never exposed
	Type        UserType    `json:"type"`
	Active      bool        `json:"active"`
	UserDetails UserDetails `json:"userDetails"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// UserFilter selects users by exact match on every non-empty field.
type UserFilter struct {
	ID       string
	Email    string
	Password string
}

func (f UserFilter) IsEmpty() bool {
	return f.ID == "" && f.Email == "" && f.Password == ""
}
