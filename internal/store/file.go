package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	UsersFile    = "users.txt"
	RoomsFile    = "rooms.txt"
	BookingsFile = "bookings.txt"
)

// FileStore keeps records as comma separated lines in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadUsers(ctx context.Context) ([]UserRecord, int, error) {
	var out []UserRecord
	skipped, err := s.readLines(UsersFile, 4, func(f []string) error {
		if f[0] == "" || f[1] == "" {
			return errors.New("empty id or name")
		}
		out = append(out, UserRecord{ID: f[0], Name: f[1], Role: f[2], PasswordHash: f[3]})
		return nil
	})
	return out, skipped, err
}

func (s *FileStore) SaveUsers(ctx context.Context, records []UserRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ID, r.Name, r.Role, r.PasswordHash}
	}
	return s.writeLines(UsersFile, rows)
}

func (s *FileStore) LoadRooms(ctx context.Context) ([]RoomRecord, int, error) {
	var out []RoomRecord
	skipped, err := s.readLines(RoomsFile, 4, func(f []string) error {
		if f[0] == "" {
			return errors.New("empty branch name")
		}
		rec := RoomRecord{Branch: f[0], RoomID: f[1], Type: f[2]}
		if rec.RoomID != "" {
			c, err := strconv.Atoi(f[3])
			if err != nil {
				return fmt.Errorf("capacity: %w", err)
			}
			rec.Capacity = c
		}
		out = append(out, rec)
		return nil
	})
	return out, skipped, err
}

func (s *FileStore) SaveRooms(ctx context.Context, records []RoomRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		capacity := ""
		if r.RoomID != "" {
			capacity = strconv.Itoa(r.Capacity)
		}
		rows[i] = []string{r.Branch, r.RoomID, r.Type, capacity}
	}
	return s.writeLines(RoomsFile, rows)
}

func (s *FileStore) LoadBookings(ctx context.Context) ([]BookingRecord, int, error) {
	var out []BookingRecord
	skipped, err := s.readLines(BookingsFile, 6, func(f []string) error {
		for _, v := range f {
			if v == "" {
				return errors.New("empty field")
			}
		}
		out = append(out, BookingRecord{
			ID: f[0], CustomerID: f[1], Branch: f[2], RoomID: f[3], Date: f[4], Time: f[5],
		})
		return nil
	})
	return out, skipped, err
}

func (s *FileStore) SaveBookings(ctx context.Context, records []BookingRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{r.ID, r.CustomerID, r.Branch, r.RoomID, r.Date, r.Time}
	}
	return s.writeLines(BookingsFile, rows)
}

// readLines feeds every line with exactly n fields to parse. Lines that are
// malformed or rejected by parse are logged and skipped. A missing file
// yields no lines.
func (s *FileStore) readLines(name string, n int, parse func([]string) error) (int, error) {
	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	skipped := 0
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				log.Printf("%s: skipping malformed line %d: %v", name, parseErr.Line, err)
				skipped++
				continue
			}
			return skipped, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if len(fields) != n {
			log.Printf("%s: skipping line %d: expected %d fields, got %d", name, line, n, len(fields))
			skipped++
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if err := parse(fields); err != nil {
			log.Printf("%s: skipping line %d: %v", name, line, err)
			skipped++
		}
	}
	return skipped, nil
}

// writeLines replaces the file atomically: rows go to a temp file that is
// renamed over the target once fully written.
func (s *FileStore) writeLines(name string, rows [][]string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
