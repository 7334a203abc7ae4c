package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/library"
)

// DefaultPath is used when session_file is not configured.
const DefaultPath = "~/.config/shelf/session.toml"

// File persists a session as TOML readable only by the owner.
type File struct {
	Path string
}

type record struct {
	Token       string `toml:"token"`
	UserID      int64  `toml:"user_id,omitempty"`
	Email       string `toml:"email,omitempty"`
	IsActive    bool   `toml:"is_active,omitempty"`
	IsSuperuser bool   `toml:"is_superuser,omitempty"`
	HasUser     bool   `toml:"has_user,omitempty"`
}

// Load reads the persisted session. A missing file yields an empty snapshot.
func (f *File) Load() (Snapshot, error) {
	resolved, err := config.ExpandPath(f.Path, DefaultPath)
	if err != nil {
		return Snapshot{}, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("read session: %w", err)
	}
	var rec record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("parse session: %w", err)
	}
	snap := Snapshot{Token: strings.TrimSpace(rec.Token), HasUser: rec.HasUser}
	if rec.HasUser {
		snap.User = library.User{
			ID:          rec.UserID,
			Email:       rec.Email,
			IsActive:    rec.IsActive,
			IsSuperuser: rec.IsSuperuser,
		}
	}
	return snap, nil
}

// Save writes snap, creating parent directories as needed.
func (f *File) Save(snap Snapshot) error {
	resolved, err := config.ExpandPath(f.Path, DefaultPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	rec := record{Token: snap.Token, HasUser: snap.HasUser}
	if snap.HasUser {
		rec.UserID = snap.User.ID
		rec.Email = snap.User.Email
		rec.IsActive = snap.User.IsActive
		rec.IsSuperuser = snap.User.IsSuperuser
	}
	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the persisted session. A missing file is not an error.
func (f *File) Clear() error {
	resolved, err := config.ExpandPath(f.Path, DefaultPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
