// Package pass issues and checks the signed payload printed on a booking pass.
package pass

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/nekogravitycat/smart-room-booking/internal/booking"
	"github.com/nekogravitycat/smart-room-booking/internal/pkg/apperror"
)

var (
	ErrMalformed    = apperror.New(http.StatusBadRequest, "malformed pass payload")
	ErrBadSignature = apperror.New(http.StatusUnauthorized, "pass signature does not match")
)

// sep cannot occur inside ids or branch names.
const sep = ","

// Claims are the booking facts carried by a pass.
type Claims struct {
	BookingID  string
	CustomerID string
	Branch     string
	RoomID     string
	Date       string
	Time       string
}

func claimsOf(b *booking.Booking) Claims {
	return Claims{
		BookingID:  b.ID,
		CustomerID: b.Customer.ID,
		Branch:     b.Branch.Name,
		RoomID:     b.Room.ID,
		Date:       b.Slot.Date,
		Time:       b.Slot.Time,
	}
}

func (c Claims) fields() []string {
	return []string{c.BookingID, c.CustomerID, c.Branch, c.RoomID, c.Date, c.Time}
}

// Matches reports whether the pass still describes b.
func (c Claims) Matches(b *booking.Booking) bool {
	return c == claimsOf(b)
}

// Signer signs pass payloads with HMAC-SHA256.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Payload returns "id,customer,branch,room,date,time,signature" for b.
func (s *Signer) Payload(b *booking.Booking) string {
	data := strings.Join(claimsOf(b).fields(), sep)
	return data + sep + s.sign(data)
}

// Verify checks the signature of a payload and returns its claims.
func (s *Signer) Verify(payload string) (Claims, error) {
	i := strings.LastIndex(payload, sep)
	if i < 0 {
		return Claims{}, ErrMalformed
	}
	data, sig := payload[:i], payload[i+1:]

	f := strings.Split(data, sep)
	if len(f) != 6 {
		return Claims{}, ErrMalformed
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(data))) {
		return Claims{}, ErrBadSignature
	}
	return Claims{
		BookingID:  f[0],
		CustomerID: f[1],
		Branch:     f[2],
		RoomID:     f[3],
		Date:       f[4],
		Time:       f[5],
	}, nil
}

func (s *Signer) sign(data string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
