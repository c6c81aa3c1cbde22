package room

import (
	"net/http"
	"strings"

	"github.com/nekogravitycat/smart-room-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/smart-room-booking/internal/schedule"
)

var (
	ErrRoomNotFound     = apperror.New(http.StatusNotFound, "room not found")
	ErrBranchNotFound   = apperror.New(http.StatusNotFound, "branch not found")
	ErrDuplicateRoom    = apperror.New(http.StatusConflict, "room id already exists in this branch")
	ErrDuplicateBranch  = apperror.New(http.StatusConflict, "branch already exists")
	ErrInvalidType      = apperror.New(http.StatusBadRequest, "room type must be Small or Large")
	ErrInvalidCapacity  = apperror.New(http.StatusBadRequest, "capacity must be greater than zero")
	ErrEmptyRoomID      = apperror.New(http.StatusBadRequest, "room id cannot be empty")
	ErrEmptyBranchName  = apperror.New(http.StatusBadRequest, "branch name cannot be empty")
	ErrInvalidFieldChar = apperror.New(http.StatusBadRequest, "names cannot contain commas or line breaks")
)

// Type is the size class of a room.
type Type string

const (
	TypeSmall Type = "Small"
	TypeLarge Type = "Large"
)

// ParseType normalises free-form input ("small", "LARGE") to a Type.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidType
	}
	t := Type(strings.ToUpper(s[:1]) + strings.ToLower(s[1:]))
	switch t {
	case TypeSmall, TypeLarge:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// SmartRoom is a bookable meeting room. It exclusively owns its schedule.
type SmartRoom struct {
	ID       string
	Type     Type
	Capacity int
	Schedule *schedule.Schedule
}

// New validates the attributes and returns a room with an empty schedule.
func New(id string, roomType string, capacity int) (*SmartRoom, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyRoomID
	}
	if !validField(id) {
		return nil, ErrInvalidFieldChar
	}
	t, err := ParseType(roomType)
	if err != nil {
		return nil, err
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &SmartRoom{
		ID:       id,
		Type:     t,
		Capacity: capacity,
		Schedule: schedule.New(),
	}, nil
}

// validField rejects characters that would break the flat record files.
func validField(s string) bool {
	return !strings.ContainsAny(s, ",\r\n")
}
