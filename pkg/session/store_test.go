package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.bin")
	store, err := Open(path, "test-secret")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return store, path
}

func TestSetGetClearRoundTrip(t *testing.T) {
	store, path := tempStore(t)

	if err := store.Set(RealmPartner, "tok-partner", map[string]string{"company": "Acme"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	sess, ok := store.Get(RealmPartner)
	if !ok || sess.Token != "tok-partner" {
		t.Fatalf("unexpected session: %+v %v", sess, ok)
	}

	reopened, err := Open(path, "test-secret")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sess, ok = reopened.Get(RealmPartner)
	if !ok || sess.Token != "tok-partner" {
		t.Fatalf("session did not survive reopen: %+v %v", sess, ok)
	}
	if !bytes.Contains(sess.Profile, []byte("Acme")) {
		t.Fatalf("profile snapshot lost: %s", sess.Profile)
	}

	if err := reopened.Clear(RealmPartner); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := reopened.Get(RealmPartner); ok {
		t.Fatalf("cleared realm still present")
	}
}

func TestBearerTokenPrecedence(t *testing.T) {
	store, _ := tempStore(t)

	if _, ok := store.BearerToken(); ok {
		t.Fatalf("empty store should yield no token")
	}

	store.Set(RealmUser, "tok-user", nil)
	store.Set(RealmAdmin, "tok-admin", nil)
	if token, _ := store.BearerToken(); token != "tok-admin" {
		t.Fatalf("admin should outrank user, got %q", token)
	}

	store.Set(RealmPartner, "tok-partner", nil)
	if token, _ := store.BearerToken(); token != "tok-partner" {
		t.Fatalf("partner should outrank admin, got %q", token)
	}
}

func TestRealmsAreIndependent(t *testing.T) {
	store, _ := tempStore(t)
	store.Set(RealmPartner, "tok-partner", nil)
	store.Set(RealmAdmin, "tok-admin", nil)

	store.Clear(RealmPartner)
	if token, ok := store.Token(RealmAdmin); !ok || token != "tok-admin" {
		t.Fatalf("clearing one realm disturbed another: %q %v", token, ok)
	}
}

func TestSessionFileSealedAtRest(t *testing.T) {
	store, path := tempStore(t)
	store.Set(RealmPartner, "super-secret-token", nil)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read session file: %v", err)
	}
	if bytes.Contains(raw, []byte("super-secret-token")) {
		t.Fatalf("token stored in plaintext")
	}
	if bytes.Contains(raw, []byte("partnerToken")) {
		t.Fatalf("storage keys visible in sealed file")
	}
}

func TestExpiredJWTDroppedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, _ := Open(path, "test-secret")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	store.Set(RealmAdmin, expired, nil)
	store.Set(RealmUser, "opaque-token", nil)

	reopened, err := Open(path, "test-secret")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, ok := reopened.Get(RealmAdmin); ok {
		t.Fatalf("expired JWT should be dropped on load")
	}
	if token, ok := reopened.Token(RealmUser); !ok || token != "opaque-token" {
		t.Fatalf("opaque token should be kept, got %q %v", token, ok)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	store, err := Open(path, "test-secret")
	if err != nil {
		t.Fatalf("open should tolerate corrupt file: %v", err)
	}
	if _, ok := store.BearerToken(); ok {
		t.Fatalf("corrupt file should yield empty store")
	}
}

func TestWrongSecretStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.bin")
	store, _ := Open(path, "right")
	store.Set(RealmPartner, "tok", nil)

	reopened, err := Open(path, "wrong")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := reopened.Get(RealmPartner); ok {
		t.Fatalf("wrong secret should not expose sessions")
	}
}
