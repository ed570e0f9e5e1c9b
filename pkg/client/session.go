package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// User is the identity record returned by the platform. Only ID and TenantID
// are required by the pipeline; the remaining fields are carried for display.
type User struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TenantID  uint   `json:"tenant_id"`
	RoleID    *uint  `json:"role_id,omitempty"`
	UserType  string `json:"user_type,omitempty"`
}

// Session is the authenticated identity plus credential held by the client.
// User and Token are both present or both absent, never one without the other.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}

// IsAuthenticated reports whether the session carries an identity
func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.User.ID != 0
}

// CredentialStore persists the session as a JSON file under a fixed name.
// A missing or corrupt file always reads back as a logged-out session.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store backed by the given file path
func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

// Load reads the persisted session. Absence and corruption both yield an
// empty session so startup restore can never fail on bad local state.
func (s *CredentialStore) Load() Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Session{}
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Malformed persisted state is discarded, not surfaced
		_ = os.Remove(s.path)
		return Session{}
	}
	if !session.IsAuthenticated() {
		return Session{}
	}
	return session
}

// Save writes the session to disk, creating the parent directory as needed
func (s *CredentialStore) Save(session Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the persisted session
func (s *CredentialStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SessionManager owns the single process-wide session. It is constructed once
// and handed to everything that needs identity, instead of living in hidden
// global state. Reads and writes are guarded because callers may touch the
// session from the request pipeline and the poller concurrently.
type SessionManager struct {
	mu      sync.RWMutex
	store   *CredentialStore
	current Session
	log     *zap.Logger
}

// NewSessionManager creates a session manager backed by the given store
func NewSessionManager(store *CredentialStore, log *zap.Logger) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionManager{store: store, log: log}
}

// Restore loads the persisted session at startup. A well-formed identity
// (one that carries an id) becomes current; anything else leaves the
// session empty without error.
func (m *SessionManager) Restore() {
	session := m.store.Load()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = session

	if session.IsAuthenticated() {
		m.log.Debug("session restored",
			zap.Uint("user_id", session.User.ID),
			zap.Uint("tenant_id", session.User.TenantID))
	}
}

// Current returns a copy of the session. Callers never see or mutate the
// manager's internal state.
func (m *SessionManager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session := m.current
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}

// Set installs and persists a new session
func (m *SessionManager) Set(user *User, token string) error {
	session := Session{User: user, Token: token}

	m.mu.Lock()
	m.current = session
	m.mu.Unlock()

	if err := m.store.Save(session); err != nil {
		m.log.Warn("failed to persist session", zap.Error(err))
		return err
	}
	return nil
}

// Clear destroys the current and persisted session unconditionally
func (m *SessionManager) Clear() {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.log.Warn("failed to clear persisted session", zap.Error(err))
	}
}
