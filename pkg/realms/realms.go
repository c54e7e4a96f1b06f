// Package realms builds realm-specific typed clients on top of the generic
// API client. Each realm pins its own token explicitly instead of relying on
// the generic precedence rule, so two active realms never leak tokens across
// endpoints. A 401 on a protected endpoint clears that realm's stored
// session, mirroring the redirect-to-login behavior of the UI.
package realms

import (
	"context"
	"net/http"

	"github.com/tanveerafzal/id-verify-sub000/pkg/api"
	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/session"
)

type base struct {
	api      *api.Client
	sessions *session.Store
	realm    session.Realm
	log      *logger.Logger
}

// LoginPath returns the login route callers should send the user to after a
// cleared session.
func (b base) LoginPath() string { return b.realm.LoginPath() }

// Logout drops the realm's stored session. Purely local; the backend keeps
// no client session state.
func (b base) Logout() error { return b.sessions.Clear(b.realm) }

// call performs one realm-scoped request. The realm token is attached
// explicitly; on a 401 the stored session is cleared.
func call[T any](ctx context.Context, b base, method, path string, body any) api.Envelope[T] {
	token, _ := b.sessions.Token(b.realm)
	env := api.Do[T](ctx, b.api, path, api.Options{Method: method, Body: body, Token: token, SkipTokenSource: true})
	if env.Status == http.StatusUnauthorized && token != "" {
		b.log.Warn("session rejected, clearing realm", map[string]any{
			"realm": string(b.realm),
			"login": b.realm.LoginPath(),
		})
		if err := b.sessions.Clear(b.realm); err != nil {
			b.log.Error("clearing rejected session failed", err)
		}
	}
	return env
}

// login posts credentials and stores the returned session. No token is
// attached: a login must never ride on another realm's stored session.
func login[P any](ctx context.Context, b base, path string, creds Credentials) api.Envelope[loginData[P]] {
	env := api.Do[loginData[P]](ctx, b.api, path, api.Options{Method: http.MethodPost, Body: creds, SkipTokenSource: true})
	if env.OK && env.Data.Token != "" {
		if err := b.sessions.Set(b.realm, env.Data.Token, env.Data.Profile); err != nil {
			b.log.Error("persisting session failed", err)
		}
	}
	return env
}

// loginData is the shape every realm's login endpoint returns.
type loginData[P any] struct {
	Token   string `json:"token"`
	Profile P      `json:"profile"`
}
