// internal/session/store.go
package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	errs "housing-portal/internal/common/errors"
	"housing-portal/internal/common/logger"
	"housing-portal/internal/models"
)

// recordKey is the fixed key the session record is stored under inside the
// session file.
const recordKey = "portal.session"

// Store persists the single session record to disk. Writes are atomic (temp
// file + rename) and serialized by a mutex, so a reader never observes a
// partially written record.
type Store struct {
	path   string
	logger logger.Logger

	mu      sync.Mutex
	current *models.Session
}

func NewStore(path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{path: path, logger: log}
}

// Load reads the persisted session. A missing file means logged out. A record
// that fails the both-or-neither integrity check is deleted and reported as
// corrupt; callers treat that the same as logged out.
func (s *Store) Load() (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record map[string]models.Session
	if err := json.Unmarshal(data, &record); err != nil {
		s.discardLocked("unreadable session file")
		return nil, errs.NewSessionCorruptError(err.Error())
	}

	sess, ok := record[recordKey]
	if !ok || !sess.Valid() {
		s.discardLocked("incomplete session record")
		return nil, errs.NewSessionCorruptError("record missing token or user")
	}

	s.current = &sess
	return &sess, nil
}

// Save persists a complete session. Incomplete records are refused so a
// partial session can never be written.
func (s *Store) Save(sess models.Session) error {
	if !sess.Valid() {
		return errs.NewSessionWriteFailedError(
			errs.NewSessionCorruptError("refusing to persist incomplete session"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLocked(sess); err != nil {
		return errs.NewSessionWriteFailedError(err)
	}
	s.current = &sess
	return nil
}

// Clear removes the persisted record and forgets the in-memory session.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Current returns the in-memory session, if any.
func (s *Store) Current() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Session{}, false
	}
	return *s.current, true
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}

// RefreshToken implements api.TokenSource.
func (s *Store) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.RefreshToken
}

// UpdateTokens implements api.TokenSource, rewriting the persisted record
// with the rotated token pair.
func (s *Store) UpdateTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return errs.NewSessionCorruptError("no active session to update")
	}

	updated := *s.current
	updated.AccessToken = access
	updated.RefreshToken = refresh
	if err := s.writeLocked(updated); err != nil {
		return errs.NewSessionWriteFailedError(err)
	}
	s.current = &updated
	return nil
}

// TokenExpiry reads the unverified exp claim of the stored access token.
// Verification belongs to the backend; the client only needs the timestamp
// for proactive refresh decisions.
func (s *Store) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	token := ""
	if s.current != nil {
		token = s.current.AccessToken
	}
	s.mu.Unlock()

	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) writeLocked(sess models.Session) error {
	data, err := json.MarshalIndent(map[string]models.Session{recordKey: sess}, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *Store) discardLocked(reason string) {
	s.logger.Warn("discarding stored session", map[string]interface{}{"reason": reason})
	s.current = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("failed to remove session file", nil)
	}
}
