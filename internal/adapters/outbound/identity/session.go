package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// DefaultCookieNames are tried in order; the first non-empty one wins.
var DefaultCookieNames = []string{
	"session",
	"better-auth.session_token",
	"better_auth.session_token",
}

// SessionResolver authenticates requests by session cookie.
type SessionResolver struct {
	sessions    ports.SessionStore
	clock       ports.Clock
	cookieNames []string
}

// NewSessionResolver creates a resolver. Empty cookieNames selects
// DefaultCookieNames; a nil clock selects ports.SystemClock.
func NewSessionResolver(sessions ports.SessionStore, clock ports.Clock, cookieNames ...string) *SessionResolver {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if len(cookieNames) == 0 {
		cookieNames = DefaultCookieNames
	}
	return &SessionResolver{sessions: sessions, clock: clock, cookieNames: cookieNames}
}

func (s *SessionResolver) Resolve(r *http.Request) (domain.User, error) {
	token := s.token(r)
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}

	sess, err := s.sessions.LookupSession(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return domain.User{}, err
		}
		return domain.User{}, fmt.Errorf("lookup session: %w", err)
	}
	if sess.ExpiresAt.Before(s.clock.Now()) {
		return domain.User{}, domain.ErrSessionExpired
	}
	return sess.User, nil
}

func (s *SessionResolver) token(r *http.Request) string {
	for _, name := range s.cookieNames {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			continue
		}
		return SessionToken(c.Value)
	}
	return ""
}

// SessionToken strips the signature from a signed cookie value
// ("token.signature"). Values without a dot are returned unchanged.
func SessionToken(cookie string) string {
	token, _, _ := strings.Cut(cookie, ".")
	return token
}
