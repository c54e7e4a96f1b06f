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

// PartnerClient exposes the partner-dashboard surface of the backend.
type PartnerClient struct {
	base
}

// NewPartner builds a partner-realm client.
func NewPartner(c *api.Client, sessions *session.Store) *PartnerClient {
	return &PartnerClient{base{
		api:      c,
		sessions: sessions,
		realm:    session.RealmPartner,
		log:      logger.New("partner-client"),
	}}
}

// Login exchanges credentials for a partner session and stores it.
func (p *PartnerClient) Login(ctx context.Context, creds Credentials) api.Envelope[PartnerProfile] {
	return profileEnvelope(login[PartnerProfile](ctx, p.base, "/api/partners/login", creds))
}

// RegisterPartnerInput captures the payload for partner signup.
type RegisterPartnerInput struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	WebsiteURL  string `json:"website_url,omitempty"`
}

// Register creates a partner account; on success the session is stored like
// a login.
func (p *PartnerClient) Register(ctx context.Context, input RegisterPartnerInput) api.Envelope[PartnerProfile] {
	env := api.Do[loginData[PartnerProfile]](ctx, p.api, "/api/partners/register", api.Options{
		Method:          http.MethodPost,
		Body:            input,
		SkipTokenSource: true,
	})
	if env.OK && env.Data.Token != "" {
		if err := p.sessions.Set(p.realm, env.Data.Token, env.Data.Profile); err != nil {
			p.log.Error("persisting session failed", err)
		}
	}
	return profileEnvelope(env)
}

// Profile fetches the authenticated partner's profile.
func (p *PartnerClient) Profile(ctx context.Context) api.Envelope[PartnerProfile] {
	return call[PartnerProfile](ctx, p.base, http.MethodGet, "/api/partners/profile", nil)
}

// UpdateProfile patches mutable profile fields.
func (p *PartnerClient) UpdateProfile(ctx context.Context, fields map[string]any) api.Envelope[PartnerProfile] {
	return call[PartnerProfile](ctx, p.base, http.MethodPatch, "/api/partners/profile", fields)
}

// Verifications lists the partner's verification runs, newest first.
func (p *PartnerClient) Verifications(ctx context.Context, limit int) api.Envelope[[]Verification] {
	path := "/api/partners/verifications"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return call[[]Verification](ctx, p.base, http.MethodGet, path, nil)
}

// Verification fetches one verification run.
func (p *PartnerClient) Verification(ctx context.Context, id string) api.Envelope[Verification] {
	path := fmt.Sprintf("/api/partners/verifications/%s", url.PathEscape(id))
	return call[Verification](ctx, p.base, http.MethodGet, path, nil)
}

// WebhookLogs lists recent webhook delivery attempts for display.
func (p *PartnerClient) WebhookLogs(ctx context.Context, limit int) api.Envelope[[]WebhookLog] {
	path := "/api/partners/webhooks/logs"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	return call[[]WebhookLog](ctx, p.base, http.MethodGet, path, nil)
}

// profileEnvelope projects a login envelope down to the profile, keeping the
// transport fields intact.
func profileEnvelope[P any](env api.Envelope[loginData[P]]) api.Envelope[P] {
	return api.Envelope[P]{
		Data:   env.Data.Profile,
		Error:  env.Error,
		Status: env.Status,
		OK:     env.OK,
	}
}
