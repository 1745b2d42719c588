package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/adapters/outbound/identity"
	"github.com/sufield/todoapi/internal/adapters/outbound/inmemory"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
	"github.com/sufield/todoapi/internal/testhelpers"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func proxied(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(identity.HeaderUserID, id)
	r.Header.Set(identity.HeaderUserEmail, "ada@example.com")
	r.Header.Set(identity.HeaderUserName, "Ada")
	return r
}

func withCookie(name, value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: name, Value: value})
	return r
}

func TestHeaderResolver(t *testing.T) {
	t.Run("untrusted headers are ignored", func(t *testing.T) {
		_, err := identity.HeaderResolver{}.Resolve(proxied("u1"))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("trusted headers", func(t *testing.T) {
		u, err := identity.HeaderResolver{Trusted: true}.Resolve(proxied("u1"))
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: "u1", Email: "ada@example.com", Name: "Ada"}, u)
	})

	t.Run("missing user id", func(t *testing.T) {
		_, err := identity.HeaderResolver{Trusted: true}.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("peer check rejects", func(t *testing.T) {
		h := identity.HeaderResolver{Trusted: true, PeerCheck: func(*http.Request) bool { return false }}
		_, err := h.Resolve(proxied("u1"))
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestSessionToken(t *testing.T) {
	assert.Equal(t, "abc", identity.SessionToken("abc.signature"))
	assert.Equal(t, "abc", identity.SessionToken("abc"))
	assert.Equal(t, "abc", identity.SessionToken("abc.sig.more"))
}

func TestSessionResolver(t *testing.T) {
	sessions := inmemory.NewSessionStore()
	sessions.Put("live", ports.Session{User: domain.User{ID: "u1"}, ExpiresAt: now.Add(time.Hour)})
	sessions.Put("old", ports.Session{User: domain.User{ID: "u2"}, ExpiresAt: now.Add(-time.Second)})
	res := identity.NewSessionResolver(sessions, testhelpers.NewFakeClock(now))

	tests := []struct {
		name    string
		req     *http.Request
		wantID  string
		wantErr error
	}{
		{"signed cookie", withCookie("session", "live.sig"), "u1", nil},
		{"better-auth cookie", withCookie("better-auth.session_token", "live.sig"), "u1", nil},
		{"underscore cookie", withCookie("better_auth.session_token", "live"), "u1", nil},
		{"unknown cookie name", withCookie("other", "live"), "", domain.ErrUnauthenticated},
		{"unknown token", withCookie("session", "nope.sig"), "", domain.ErrUnauthenticated},
		{"expired", withCookie("session", "old.sig"), "", domain.ErrSessionExpired},
		{"no cookie", httptest.NewRequest(http.MethodGet, "/", nil), "", domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := res.Resolve(tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
		})
	}
}

func TestSessionResolver_CookiePrecedence(t *testing.T) {
	sessions := inmemory.NewSessionStore()
	sessions.Put("a", ports.Session{User: domain.User{ID: "first"}, ExpiresAt: now.Add(time.Hour)})
	sessions.Put("b", ports.Session{User: domain.User{ID: "second"}, ExpiresAt: now.Add(time.Hour)})
	res := identity.NewSessionResolver(sessions, testhelpers.NewFakeClock(now))

	r := withCookie("better-auth.session_token", "b")
	r.AddCookie(&http.Cookie{Name: "session", Value: "a"})
	u, err := res.Resolve(r)
	require.NoError(t, err)
	assert.Equal(t, "first", u.ID)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) LookupSession(ctx context.Context, token string) (ports.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(ports.Session), args.Error(1)
}

func TestSessionResolver_StoreFailureIsInternal(t *testing.T) {
	store := new(MockSessionStore)
	store.On("LookupSession", mock.Anything, "tok").Return(ports.Session{}, errors.New("db down"))

	_, err := identity.NewSessionResolver(store, testhelpers.NewFakeClock(now)).Resolve(withCookie("session", "tok.sig"))
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	store.AssertExpectations(t)
}

func TestChain(t *testing.T) {
	sessions := inmemory.NewSessionStore()
	sessions.Put("tok", ports.Session{User: domain.User{ID: "cookie-user"}, ExpiresAt: now.Add(time.Hour)})
	sessions.Put("old", ports.Session{User: domain.User{ID: "u2"}, ExpiresAt: now.Add(-time.Hour)})

	chain := identity.Chain{
		identity.HeaderResolver{Trusted: true},
		identity.NewSessionResolver(sessions, testhelpers.NewFakeClock(now)),
	}

	u, err := chain.Resolve(proxied("header-user"))
	require.NoError(t, err)
	assert.Equal(t, "header-user", u.ID)

	u, err = chain.Resolve(withCookie("session", "tok"))
	require.NoError(t, err)
	assert.Equal(t, "cookie-user", u.ID)

	_, err = chain.Resolve(withCookie("session", "old"))
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	_, err = chain.Resolve(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
