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

// AdminClient exposes the admin-dashboard surface of the backend.
type AdminClient struct {
	base
}

// NewAdmin builds an admin-realm client.
func NewAdmin(c *api.Client, sessions *session.Store) *AdminClient {
	return &AdminClient{base{
		api:      c,
		sessions: sessions,
		realm:    session.RealmAdmin,
		log:      logger.New("admin-client"),
	}}
}

// Login exchanges credentials for an admin session and stores it.
func (a *AdminClient) Login(ctx context.Context, creds Credentials) api.Envelope[AdminProfile] {
	return profileEnvelope(login[AdminProfile](ctx, a.base, "/api/admin/login", creds))
}

// Profile fetches the authenticated admin's profile.
func (a *AdminClient) Profile(ctx context.Context) api.Envelope[AdminProfile] {
	return call[AdminProfile](ctx, a.base, http.MethodGet, "/api/admin/profile", nil)
}

// Partners lists partner accounts across the platform.
func (a *AdminClient) Partners(ctx context.Context, limit int) api.Envelope[[]PartnerSummary] {
	path := "/api/admin/partners"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return call[[]PartnerSummary](ctx, a.base, http.MethodGet, path, nil)
}

// Verifications lists verification runs across all partners, optionally
// filtered by status.
func (a *AdminClient) Verifications(ctx context.Context, status string, limit int) api.Envelope[[]Verification] {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	path := "/api/admin/verifications"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return call[[]Verification](ctx, a.base, http.MethodGet, path, nil)
}

// Verification fetches one verification run with admin visibility.
func (a *AdminClient) Verification(ctx context.Context, id string) api.Envelope[Verification] {
	path := fmt.Sprintf("/api/admin/verifications/%s", url.PathEscape(id))
	return call[Verification](ctx, a.base, http.MethodGet, path, nil)
}
