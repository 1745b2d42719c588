package identity

import (
	"errors"
	"net/http"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// Chain tries each resolver in order. A resolver reporting
// ErrUnauthenticated passes the request on; any other outcome is final.
type Chain []ports.IdentityResolver

func (c Chain) Resolve(r *http.Request) (domain.User, error) {
	for _, res := range c {
		u, err := res.Resolve(r)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, domain.ErrUnauthenticated) {
			return domain.User{}, err
		}
	}
	return domain.User{}, domain.ErrUnauthenticated
}
