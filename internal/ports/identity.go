package ports

import (
	"context"
	"net/http"
	"time"

	"github.com/sufield/todoapi/internal/domain"
)

// IdentityResolver yields the authenticated user behind a request.
//
// Error Contract:
// - Returns domain.ErrUnauthenticated if no usable credentials are present
// - Returns domain.ErrSessionExpired if the session exists but has expired
type IdentityResolver interface {
	Resolve(r *http.Request) (domain.User, error)
}

// Session is a row of the identity provider's session table.
type Session struct {
	User      domain.User
	ExpiresAt time.Time
}

// SessionStore looks up session tokens issued by the identity provider.
//
// Error Contract:
// - Returns domain.ErrUnauthenticated if the token is unknown
type SessionStore interface {
	LookupSession(ctx context.Context, token string) (Session, error)
}
