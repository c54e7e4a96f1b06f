package realms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tanveerafzal/id-verify-sub000/pkg/api"
	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/session"
)

// UserClient exposes the end-user surface: login, profile and the public
// verification certificate.
type UserClient struct {
	base
}

// NewUser builds an end-user-realm client.
func NewUser(c *api.Client, sessions *session.Store) *UserClient {
	return &UserClient{base{
		api:      c,
		sessions: sessions,
		realm:    session.RealmUser,
		log:      logger.New("user-client"),
	}}
}

// Login exchanges credentials for an end-user session and stores it.
func (u *UserClient) Login(ctx context.Context, creds Credentials) api.Envelope[UserProfile] {
	return profileEnvelope(login[UserProfile](ctx, u.base, "/api/users/login", creds))
}

// Profile fetches the authenticated end-user's profile.
func (u *UserClient) Profile(ctx context.Context) api.Envelope[UserProfile] {
	return call[UserProfile](ctx, u.base, http.MethodGet, "/api/users/profile", nil)
}

// Certificate fetches the verification certificate for a completed run.
// Certificates are public record pages; no token is required, but the user
// token is attached when present.
func (u *UserClient) Certificate(ctx context.Context, verificationID string) api.Envelope[Certificate] {
	path := fmt.Sprintf("/api/verifications/%s/certificate", url.PathEscape(verificationID))
	return call[Certificate](ctx, u.base, http.MethodGet, path, nil)
}
