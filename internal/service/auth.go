package service

import (
	"context"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/session"
	"github.com/and161185/debtdesk/internal/transport"
)

// Auth manages the session lifecycle: login, logout, registration and the
// current-user probe. It is the only writer of the session store besides the
// transport's 401 hook.
type Auth struct {
	api     *transport.Client
	cache   *cache.Store
	session *session.Store
}

// NewAuth constructs the auth service.
func NewAuth(api *transport.Client, store *cache.Store, sess *session.Store) *Auth {
	return &Auth{api: api, cache: store, session: sess}
}

// CurrentUser probes who is logged in, updating the session store with the
// outcome either way. Route guards call this before rendering protected views.
func (s *Auth) CurrentUser(ctx context.Context) (model.User, error) {
	u, err := cache.Get(ctx, s.cache, userMeKey,
		func(ctx context.Context) (model.User, error) {
			return transport.Get[model.User](ctx, s.api, "/users/me")
		})
	if err != nil {
		s.session.Clear()
		return model.User{}, err
	}
	s.session.Set(u)
	return u, nil
}

// Login authenticates and then issues a follow-up who-am-I read to populate
// the session store and the single-user cache slot.
func (s *Auth) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	if err := checkInput(creds); err != nil {
		return model.User{}, err
	}
	if _, err := transport.Post[model.AuthResponse](ctx, s.api, "/users/login", creds); err != nil {
		return model.User{}, err
	}
	u, err := transport.Get[model.User](ctx, s.api, "/users/me")
	if err != nil {
		return model.User{}, err
	}
	s.session.Set(u)
	s.cache.Set(userMeKey, u)
	return u, nil
}

// Logout ends the session, then clears the session store and the entire
// cache. Logout is a full trust-boundary reset, not a targeted invalidation.
func (s *Auth) Logout(ctx context.Context) error {
	if _, err := transport.Post[model.AuthResponse](ctx, s.api, "/users/logout", struct{}{}); err != nil {
		return err
	}
	s.session.Clear()
	s.cache.Clear()
	return nil
}

// Register creates an account. The creation response already carries the user,
// so the session store and cache slot are populated without a follow-up read.
func (s *Auth) Register(ctx context.Context, creds model.Credentials) (model.User, error) {
	if err := checkInput(creds); err != nil {
		return model.User{}, err
	}
	u, err := transport.Post[model.User](ctx, s.api, "/users", creds)
	if err != nil {
		return model.User{}, err
	}
	s.session.Set(u)
	s.cache.Set(userMeKey, u)
	return u, nil
}
