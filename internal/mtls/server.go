package mtls

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/svid/x509svid"
)

// Policy names which client SPIFFE IDs may connect.
//
// At most one field may be set. The zero value admits any client in the
// server's own trust domain.
type Policy struct {
	// AllowedID admits exactly this SPIFFE ID, e.g. "spiffe://example.org/web".
	AllowedID string

	// AllowedTrustDomain admits any SPIFFE ID in this trust domain.
	AllowedTrustDomain string
}

// Validate checks that the policy is well-formed.
func (p Policy) Validate() error {
	if p.AllowedID != "" && p.AllowedTrustDomain != "" {
		return errors.New("AllowedID and AllowedTrustDomain are mutually exclusive")
	}
	if p.AllowedID != "" {
		if _, err := spiffeid.FromString(p.AllowedID); err != nil {
			return fmt.Errorf("invalid AllowedID: %w", err)
		}
	}
	if p.AllowedTrustDomain != "" {
		if _, err := spiffeid.TrustDomainFromString(p.AllowedTrustDomain); err != nil {
			return fmt.Errorf("invalid AllowedTrustDomain: %w", err)
		}
	}
	return nil
}

// Allows reports whether id satisfies the policy. serverTD is used for the
// zero-value policy.
func (p Policy) Allows(id spiffeid.ID, serverTD spiffeid.TrustDomain) bool {
	switch {
	case p.AllowedID != "":
		return id.String() == p.AllowedID
	case p.AllowedTrustDomain != "":
		return id.TrustDomain().Name() == p.AllowedTrustDomain
	default:
		return id.MemberOf(serverTD)
	}
}

// NewServerTLSConfig returns a TLS 1.3 config that requires and verifies
// client SVIDs against policy. The sources are consulted on every handshake
// and must outlive the server.
func NewServerTLSConfig(svidSource x509svid.Source, bundleSource x509bundle.Source, policy Policy) (*tls.Config, error) {
	switch {
	case svidSource == nil:
		return nil, errors.New("svidSource cannot be nil")
	case bundleSource == nil:
		return nil, errors.New("bundleSource cannot be nil")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	authorizer, err := buildAuthorizer(svidSource, policy)
	if err != nil {
		return nil, err
	}

	cfg := tlsconfig.MTLSServerConfig(svidSource, bundleSource, authorizer)
	cfg.MinVersion = tls.VersionTLS13
	return cfg, nil
}

func buildAuthorizer(svidSource x509svid.Source, policy Policy) (tlsconfig.Authorizer, error) {
	switch {
	case policy.AllowedID != "":
		id, err := spiffeid.FromString(policy.AllowedID)
		if err != nil {
			return nil, fmt.Errorf("invalid AllowedID: %w", err)
		}
		return tlsconfig.AuthorizeID(id), nil

	case policy.AllowedTrustDomain != "":
		td, err := spiffeid.TrustDomainFromString(policy.AllowedTrustDomain)
		if err != nil {
			return nil, fmt.Errorf("invalid AllowedTrustDomain: %w", err)
		}
		return tlsconfig.AuthorizeMemberOf(td), nil

	default:
		svid, err := svidSource.GetX509SVID()
		if err != nil {
			return nil, fmt.Errorf("failed to get server SVID: %w", err)
		}
		return tlsconfig.AuthorizeMemberOf(svid.ID.TrustDomain()), nil
	}
}
