// Package session manages the three independent client-side auth realms
// (partner, admin, end-user). Tokens and cached profile snapshots persist in
// a sealed file under the user config dir; realms never share tokens.
package session

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tanveerafzal/id-verify-sub000/pkg/crypto"
	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
)

// Realm identifies one authentication context.
type Realm string

const (
	RealmPartner Realm = "partner"
	RealmAdmin   Realm = "admin"
	RealmUser    Realm = "user"
)

// Precedence lists realms in the order generic calls try their tokens.
func Precedence() []Realm {
	return []Realm{RealmPartner, RealmAdmin, RealmUser}
}

// TokenKey returns the storage key holding the realm's bearer token.
func (r Realm) TokenKey() string { return string(r) + "Token" }

// LoginPath returns the login route a 401 in this realm redirects to.
func (r Realm) LoginPath() string {
	switch r {
	case RealmPartner:
		return "/partner/login"
	case RealmAdmin:
		return "/admin/login"
	default:
		return "/login"
	}
}

// Session is one realm's active state.
type Session struct {
	Token   string
	Profile json.RawMessage
}

// fileState mirrors the persisted key-value layout, one token slot and one
// profile blob per realm.
type fileState struct {
	PartnerToken string          `json:"partnerToken,omitempty"`
	Partner      json.RawMessage `json:"partner,omitempty"`
	AdminToken   string          `json:"adminToken,omitempty"`
	Admin        json.RawMessage `json:"admin,omitempty"`
	UserToken    string          `json:"userToken,omitempty"`
	User         json.RawMessage `json:"user,omitempty"`
}

// Store holds the realm sessions and persists every mutation.
type Store struct {
	mu       sync.Mutex
	path     string
	secret   string
	sessions map[Realm]Session
	log      *logger.Logger
}

// Open loads the session file at path, sealed with secret. A missing or
// unreadable file yields an empty store rather than an error; a session file
// must never brick the client. Expired JWT bearer tokens are dropped on load.
func Open(path, secret string) (*Store, error) {
	s := &Store{
		path:     path,
		secret:   secret,
		sessions: make(map[Realm]Session),
		log:      logger.New("session"),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("session file unreadable, starting empty", map[string]any{"path": path})
		}
		return s, nil
	}
	plain, err := crypto.Open(secret, data)
	if err != nil {
		s.log.Warn("session file could not be unsealed, starting empty")
		return s, nil
	}
	var state fileState
	if err := json.Unmarshal(plain, &state); err != nil {
		s.log.Warn("session file corrupt, starting empty")
		return s, nil
	}
	s.restore(RealmPartner, state.PartnerToken, state.Partner)
	s.restore(RealmAdmin, state.AdminToken, state.Admin)
	s.restore(RealmUser, state.UserToken, state.User)
	return s, nil
}

func (s *Store) restore(realm Realm, token string, profile json.RawMessage) {
	if token == "" {
		return
	}
	if tokenExpired(token) {
		s.log.Info("dropping expired session", map[string]any{"realm": string(realm)})
		return
	}
	s.sessions[realm] = Session{Token: token, Profile: profile}
}

// tokenExpired inspects a JWT's exp claim without verifying the signature.
// Opaque tokens are kept; only provably stale JWTs are dropped.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Get returns the realm's active session.
func (s *Store) Get(realm Realm) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[realm]
	return sess, ok
}

// Token returns the realm's bearer token.
func (s *Store) Token(realm Realm) (string, bool) {
	sess, ok := s.Get(realm)
	if !ok || sess.Token == "" {
		return "", false
	}
	return sess.Token, true
}

// BearerToken implements the generic-call precedence: partner, then admin,
// then user. Realm-specific endpoints must use Token instead.
func (s *Store) BearerToken() (string, bool) {
	for _, realm := range Precedence() {
		if token, ok := s.Token(realm); ok {
			return token, true
		}
	}
	return "", false
}

// Set stores a realm session and persists the store. profile may be nil.
func (s *Store) Set(realm Realm, token string, profile any) error {
	var blob json.RawMessage
	if profile != nil {
		encoded, err := json.Marshal(profile)
		if err != nil {
			return err
		}
		blob = encoded
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[realm] = Session{Token: token, Profile: blob}
	return s.persistLocked()
}

// Clear removes a realm session and persists the store.
func (s *Store) Clear(realm Realm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, realm)
	return s.persistLocked()
}

// ClearAll removes every realm session.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[Realm]Session)
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	state := fileState{}
	if sess, ok := s.sessions[RealmPartner]; ok {
		state.PartnerToken, state.Partner = sess.Token, sess.Profile
	}
	if sess, ok := s.sessions[RealmAdmin]; ok {
		state.AdminToken, state.Admin = sess.Token, sess.Profile
	}
	if sess, ok := s.sessions[RealmUser]; ok {
		state.UserToken, state.User = sess.Token, sess.Profile
	}
	plain, err := json.Marshal(state)
	if err != nil {
		return err
	}
	sealed, err := crypto.Seal(s.secret, plain)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, sealed, 0o600)
}
