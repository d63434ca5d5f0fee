package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"docchat/internal/domain"
)

// FileStore keeps one JSON file per session under a directory. It is a
// plain keyed blob store: no locking beyond this process, listing is a
// directory scan.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var unsafeIDRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *FileStore) Save(session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(session)
}

// Append adds messages to a session, creating it when missing.
func (s *FileStore) Append(id string, messages ...domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getLocked(id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		session = &domain.Session{ID: id}
	} else if err != nil {
		return err
	}
	session.Messages = append(session.Messages, messages...)
	return s.saveLocked(session)
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return domain.ErrSessionNotFound
	}
	return err
}

// List returns the stored session ids in directory order.
func (s *FileStore) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, name[:len(name)-len(".json")])
	}
	return ids, nil
}

func (s *FileStore) getLocked(id string) (*domain.Session, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading session %s: %w", id, err)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	return &session, nil
}

func (s *FileStore) saveLocked(session *domain.Session) error {
	if session.ID == "" {
		return errors.New("session id is empty")
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", session.ID, err)
	}
	return os.WriteFile(s.path(session.ID), data, 0o644)
}

func (s *FileStore) path(id string) string {
	safe := unsafeIDRe.ReplaceAllString(id, "_")
	return filepath.Join(s.dir, safe+".json")
}
