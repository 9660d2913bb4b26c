// Package session remembers the area a rosterctl user is working in.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arnavshah/roster-api-go/pkg/models"
)

// ErrNoArea is returned when no area has been selected yet
var ErrNoArea = errors.New("no area selected; run `rosterctl area use <id>`")

type state struct {
	AreaID    string    `json:"areaId"`
	AreaName  string    `json:"areaName,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session is backed by a small JSON file
type Session struct {
	path string

	mu sync.Mutex
	st state
}

// Open reads the state file at path. A missing file is an empty session.
func Open(path string) (*Session, error) {
	s := &Session{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(raw, &s.st); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return s, nil
}

// Scope returns the selected area
func (s *Session) Scope() (models.AreaScope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.AreaID == "" {
		return models.AreaScope{}, ErrNoArea
	}
	return models.AreaScope{AreaID: s.st.AreaID}, nil
}

func (s *Session) AreaName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AreaName
}

// Use selects an area and persists it
func (s *Session) Use(area models.Area) error {
	if area.ID == "" {
		return &models.ValidationError{Field: "areaId", Message: "area id is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{AreaID: area.ID, AreaName: area.Name, UpdatedAt: time.Now().UTC()}
	return s.save()
}

// Clear forgets the selected area
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// save writes through a temp file so a crash never leaves half a file
func (s *Session) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
