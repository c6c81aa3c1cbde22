package schedule

import (
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/smart-room-booking/internal/pkg/apperror"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate = apperror.New(http.StatusBadRequest, "invalid date format, expected yyyy-MM-dd")
	ErrInvalidTime = apperror.New(http.StatusBadRequest, "invalid time format, expected HH:mm")
)

// Slot is one schedulable unit on a room's calendar.
// Date and Time are kept in canonical form so Slot can be used as a map key.
type Slot struct {
	Date string // yyyy-MM-dd
	Time string // HH:mm
}

// ParseSlot parses a date and a time-of-day into a canonical Slot.
// Trailing seconds on the time ("10:00:00") are accepted and dropped.
func ParseSlot(date, clock string) (Slot, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return Slot{}, ErrInvalidDate
	}

	clock = strings.TrimSpace(clock)
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		t, err = time.Parse("15:04:05", clock)
		if err != nil {
			return Slot{}, ErrInvalidTime
		}
	}

	return Slot{
		Date: d.Format(DateLayout),
		Time: t.Format(TimeLayout),
	}, nil
}

// Day returns the slot's calendar date at midnight UTC.
func (s Slot) Day() time.Time {
	d, _ := time.Parse(DateLayout, s.Date)
	return d
}

// Minutes returns the slot's time-of-day as minutes after midnight.
func (s Slot) Minutes() int {
	t, _ := time.Parse(TimeLayout, s.Time)
	return t.Hour()*60 + t.Minute()
}

func (s Slot) String() string {
	return s.Date + " " + s.Time
}

// Before orders slots chronologically.
func (s Slot) Before(o Slot) bool {
	if s.Date != o.Date {
		return s.Date < o.Date
	}
	return s.Time < o.Time
}
