// Package mtls secures the hop between the frontend proxy and the API with
// SPIFFE mutual TLS.
//
// When enabled, the server only completes handshakes with peers whose SVID
// satisfies the configured Policy, and the identity resolver only trusts
// X-User-* proxy headers on such connections.
package mtls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spiffe/go-spiffe/v2/workloadapi"
)

// Source provides the server's X.509 SVID and trust bundle from the SPIFFE
// Workload API and keeps them rotated.
//
// Create once per process and Close when the server has stopped. Close is
// idempotent.
type Source struct {
	mu     sync.RWMutex
	source *workloadapi.X509Source

	closeOnce sync.Once
	closeErr  error
}

// NewSource connects to the Workload API and waits for the first SVID.
//
// socket may be a unix:// or tcp:// address or a bare filesystem path. When
// empty the SDK reads SPIFFE_ENDPOINT_SOCKET. ctx only bounds the initial
// fetch; rotation keeps running until Close.
func NewSource(ctx context.Context, socket string) (*Source, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}

	var opts []workloadapi.X509SourceOption
	if socket != "" {
		opts = append(opts, workloadapi.WithClientOptions(workloadapi.WithAddr(normalizeToAddr(socket))))
	}

	x509src, err := workloadapi.NewX509Source(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create X509Source: %w", err)
	}
	return &Source{source: x509src}, nil
}

// X509Source returns the SDK source, or nil after Close.
func (s *Source) X509Source() *workloadapi.X509Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.source != nil {
			s.closeErr = s.source.Close()
			s.source = nil
		}
	})
	return s.closeErr
}

// normalizeToAddr prefixes bare filesystem paths with unix://.
func normalizeToAddr(raw string) string {
	if strings.HasPrefix(raw, "unix://") || strings.HasPrefix(raw, "tcp://") {
		return raw
	}
	return "unix://" + raw
}
