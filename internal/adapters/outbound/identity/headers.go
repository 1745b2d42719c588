package identity

import (
	"net/http"
	"strings"

	"github.com/sufield/todoapi/internal/domain"
)

// Proxy header names.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
)

// HeaderResolver reads the user from headers set by the frontend proxy.
//
// Headers are ignored unless Trusted is set and, when PeerCheck is non-nil,
// PeerCheck accepts the request. A request that does not pass is treated as
// carrying no credentials.
type HeaderResolver struct {
	Trusted   bool
	PeerCheck func(*http.Request) bool
}

func (h HeaderResolver) Resolve(r *http.Request) (domain.User, error) {
	if !h.Trusted {
		return domain.User{}, domain.ErrUnauthenticated
	}
	if h.PeerCheck != nil && !h.PeerCheck(r) {
		return domain.User{}, domain.ErrUnauthenticated
	}

	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return domain.User{
		ID:    id,
		Email: strings.TrimSpace(r.Header.Get(HeaderUserEmail)),
		Name:  strings.TrimSpace(r.Header.Get(HeaderUserName)),
	}, nil
}
