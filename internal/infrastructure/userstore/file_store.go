package userstore

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Heitorcp/customer-churn/internal/domain/model"
	"github.com/Heitorcp/customer-churn/internal/domain/port"
	"github.com/Heitorcp/customer-churn/pkg/auth"
)

// AdminUsername is the account granted the admin role.
const AdminUsername = "admin"

// ErrWrongPassword is returned by Authenticate for a known user.
var ErrWrongPassword = errors.New("wrong password")

// userNamespace derives stable user ids from usernames.
var userNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/Heitorcp/customer-churn/users"))

// defaultUsers seed a missing users file.
var defaultUsers = map[string]string{
	"admin": "churn123",
	"demo":  "demo123",
	"user":  "user123",
}

// FileStore implements port.UserStore over a JSON object mapping usernames to
// hex-encoded SHA-256 password hashes. Every change rewrites the file.
type FileStore struct {
	hashes map[string]string
	path   string
	mu     sync.RWMutex
}

// NewFileStore loads path, creating it with the default accounts when it
// does not exist.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, hashes: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		for username, password := range defaultUsers {
			s.hashes[username] = HashPassword(password)
		}
		if err := s.persist(); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("userstore: read %s: %w", path, err)
	}

	if err := json.Unmarshal(raw, &s.hashes); err != nil {
		return nil, fmt.Errorf("userstore: decode %s: %w", path, err)
	}
	return s, nil
}

// HashPassword returns the hex SHA-256 digest stored for password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *FileStore) Authenticate(_ context.Context, username, password string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.hashes[username]
	if !ok {
		return model.User{}, fmt.Errorf("user %q: %w", username, port.ErrNotFound)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(HashPassword(password))) != 1 {
		return model.User{}, ErrWrongPassword
	}
	return newUser(username), nil
}

func (s *FileStore) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.hashes))
	for name := range s.hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	users := make([]model.User, len(names))
	for i, name := range names {
		users[i] = newUser(name)
	}
	return users, nil
}

func (s *FileStore) Add(_ context.Context, username, password string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hashes[username]; ok {
		return model.User{}, fmt.Errorf("user %q: %w", username, port.ErrAlreadyExists)
	}
	s.hashes[username] = HashPassword(password)
	if err := s.persist(); err != nil {
		delete(s.hashes, username)
		return model.User{}, err
	}
	return newUser(username), nil
}

func (s *FileStore) Remove(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.hashes[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, port.ErrNotFound)
	}
	delete(s.hashes, username)
	if err := s.persist(); err != nil {
		s.hashes[username] = hash
		return err
	}
	return nil
}

func (s *FileStore) ChangePassword(_ context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.hashes[username]
	if !ok {
		return fmt.Errorf("user %q: %w", username, port.ErrNotFound)
	}
	s.hashes[username] = HashPassword(password)
	if err := s.persist(); err != nil {
		s.hashes[username] = previous
		return err
	}
	return nil
}

// persist writes the file through a temporary sibling and a rename.
// Callers hold the write lock.
func (s *FileStore) persist() error {
	raw, err := json.MarshalIndent(s.hashes, "", "  ")
	if err != nil {
		return fmt.Errorf("userstore: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("userstore: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("userstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("userstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("userstore: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("userstore: replace %s: %w", s.path, err)
	}
	return nil
}

func newUser(username string) model.User {
	roles := []string{auth.RoleAnalyst}
	if username == AdminUsername {
		roles = []string{auth.RoleAdmin, auth.RoleAnalyst}
	}
	return model.User{
		ID:       uuid.NewSHA1(userNamespace, []byte(username)),
		Username: username,
		Roles:    roles,
	}
}
