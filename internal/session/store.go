package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	Token   string
	User    library.User
	HasUser bool
}

// IsAuthenticated reports whether a token is present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}

// IsSuperuser reports whether the attached profile carries the superuser flag.
func (s Snapshot) IsSuperuser() bool {
	return s.HasUser && s.User.IsSuperuser
}

// Store holds the auth token and user profile shared by every view. A zero
// Store is ready to use and keeps the session in memory only.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	file     *File
	logger   *zap.Logger
}

// NewStore returns a Store that mirrors changes to file when file is non-nil.
func NewStore(file *File, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{file: file, logger: logger}
}

// Restore loads a previously persisted session. It reports whether a token
// was found.
func (s *Store) Restore() bool {
	if s.file == nil {
		return false
	}
	snap, err := s.file.Load()
	if err != nil {
		s.log().Warn("restore session failed", zap.Error(err))
		return false
	}
	if !snap.IsAuthenticated() {
		return false
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return true
}

// Login stores token and marks the session authenticated. Any previous
// profile is dropped.
func (s *Store) Login(token string) {
	s.mu.Lock()
	s.snapshot = Snapshot{Token: token}
	snap := s.snapshot
	s.mu.Unlock()
	s.persist(snap)
}

// SetUser attaches the profile of the token holder.
func (s *Store) SetUser(user library.User) {
	s.mu.Lock()
	if s.snapshot.Token == "" {
		s.mu.Unlock()
		return
	}
	s.snapshot.User = user
	s.snapshot.HasUser = true
	snap := s.snapshot
	s.mu.Unlock()
	s.persist(snap)
}

// Logout clears the token and profile and removes any persisted copy.
func (s *Store) Logout() {
	s.mu.Lock()
	s.snapshot = Snapshot{}
	s.mu.Unlock()
	if s.file == nil {
		return
	}
	if err := s.file.Clear(); err != nil {
		s.log().Warn("clear session file failed", zap.Error(err))
	}
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Token returns the current bearer token. It satisfies library.TokenSource.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Token
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) persist(snap Snapshot) {
	if s.file == nil {
		return
	}
	if err := s.file.Save(snap); err != nil {
		s.log().Warn("persist session failed", zap.Error(err))
	}
}

func (s *Store) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

var _ library.TokenSource = (*Store)(nil)
