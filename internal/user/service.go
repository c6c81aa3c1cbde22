package user

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nekogravitycat/smart-room-booking/internal/auth"
)

// Service defines business logic related to users.
type Service interface {
	Register(name string, role Role, password string) (*User, error)
	Login(id, name, password string) (*User, error)
	GetByID(id string) (*User, error)
	List() []*User
	Delete(id string) (bool, error)
	// EnsureDefaultAdmin seeds the A000 admin when it is missing.
	EnsureDefaultAdmin(password string) (bool, error)
	// Restore adds already hashed users loaded from storage. A user with an
	// empty password hash is a deleted account and is restored as retired.
	Restore(u *User) error
	// Retired returns deleted accounts ordered by id, password hashes cleared.
	Retired() []*User
}

type service struct {
	hasher auth.PasswordHasher

	mu      sync.RWMutex
	users   map[string]*User
	retired map[string]*User
	// lastSeq is the highest numeric id suffix ever seen per prefix.
	// Deleting a user never lowers it, so ids are not reissued.
	lastSeq map[string]int

	minPasswordLength int
}

// maxIDSeq bounds the numeric suffix adopted from restored ids.
const maxIDSeq = 999_999_999

// NewService creates a new in-memory user Service.
func NewService(hasher auth.PasswordHasher) Service {
	return &service{
		hasher:            hasher,
		users:             make(map[string]*User),
		retired:           make(map[string]*User),
		lastSeq:           make(map[string]int),
		minPasswordLength: 4,
	}
}

func (s *service) Register(name string, role Role, password string) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.ContainsAny(name, ",\r\n") {
		return nil, ErrInvalidName
	}
	if len(password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &User{
		ID:           s.nextIDLocked(role),
		Name:         name,
		Role:         role,
		PasswordHash: hash,
	}
	s.users[u.ID] = u
	s.noteIDLocked(u.ID)
	return u, nil
}

// Login requires id, name and password to all match.
func (s *service) Login(id, name, password string) (*User, error) {
	u, err := s.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Name != strings.TrimSpace(name) {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *service) GetByID(id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

// List returns all users ordered by id.
func (s *service) List() []*User {
	s.mu.RLock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Retired returns deleted accounts ordered by id.
func (s *service) Retired() []*User {
	s.mu.RLock()
	out := make([]*User, 0, len(s.retired))
	for _, u := range s.retired {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete retires the user. The account can no longer log in or be looked up,
// and its id stays reserved.
func (s *service) Delete(id string) (bool, error) {
	if id == DefaultAdminID {
		return false, ErrDefaultAdminProtected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	delete(s.users, id)
	s.retired[id] = &User{ID: u.ID, Name: u.Name, Role: u.Role}
	return true, nil
}

func (s *service) EnsureDefaultAdmin(password string) (bool, error) {
	if _, err := s.GetByID(DefaultAdminID); err == nil {
		return false, nil
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash default admin password: %w", err)
	}
	return true, s.Restore(&User{
		ID:           DefaultAdminID,
		Name:         "admin",
		Role:         RoleAdmin,
		PasswordHash: hash,
	})
}

func (s *service) Restore(u *User) error {
	if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" {
		return ErrNameRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return ErrDuplicateID
	}
	if _, exists := s.retired[u.ID]; exists {
		return ErrDuplicateID
	}
	if u.PasswordHash == "" {
		if u.ID == DefaultAdminID {
			return ErrDefaultAdminProtected
		}
		s.retired[u.ID] = u
	} else {
		s.users[u.ID] = u
	}
	s.noteIDLocked(u.ID)
	return nil
}

// nextIDLocked returns the role prefix followed by one more than the highest
// numeric suffix ever issued or restored for that prefix, zero padded to
// three digits.
func (s *service) nextIDLocked(role Role) string {
	prefix := role.idPrefix()
	return fmt.Sprintf("%s%03d", prefix, s.lastSeq[prefix]+1)
}

// noteIDLocked raises the high-water mark of the id's prefix.
func (s *service) noteIDLocked(id string) {
	for _, prefix := range []string{RoleAdmin.idPrefix(), RoleCustomer.idPrefix()} {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(id[len(prefix):])
		if err != nil || n < 0 || n > maxIDSeq {
			return
		}
		if n > s.lastSeq[prefix] {
			s.lastSeq[prefix] = n
		}
		return
	}
}
