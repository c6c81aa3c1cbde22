package user

import (
	"net/http"
	"strings"

	"github.com/nekogravitycat/smart-room-booking/internal/pkg/apperror"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "user not found")
	ErrInvalidCredentials    = apperror.New(http.StatusUnauthorized, "invalid user id, name or password")
	ErrNameRequired          = apperror.New(http.StatusBadRequest, "name is required")
	ErrPasswordTooShort      = apperror.New(http.StatusBadRequest, "password is too short")
	ErrInvalidName           = apperror.New(http.StatusBadRequest, "name cannot contain commas or line breaks")
	ErrDefaultAdminProtected = apperror.New(http.StatusForbidden, "cannot delete default admin")
	ErrDuplicateID           = apperror.New(http.StatusConflict, "user id already exists")
)

// DefaultAdminID is the administrator seeded on first start. It cannot be deleted.
const DefaultAdminID = "A000"

// Role is the closed set of user kinds.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

// ParseRole maps "admin" (any case) to RoleAdmin and everything else to RoleCustomer.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleCustomer
}

// idPrefix returns the letter user ids of this role start with.
func (r Role) idPrefix() string {
	if r == RoleAdmin {
		return "A"
	}
	return "C"
}

// User is an account holder.
type User struct {
	ID           string
	Name         string
	Role         Role
	PasswordHash string
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }
