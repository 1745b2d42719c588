package mtls

import (
	"net/http"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls"
)

// Peer is the verified identity of the client on an mTLS connection.
type Peer struct {
	ID        spiffeid.ID
	ExpiresAt time.Time
}

// PeerFromRequest extracts the client's SPIFFE ID from the TLS state.
// It is only meaningful behind a config from NewServerTLSConfig, where the
// handshake has already verified the certificate chain.
func PeerFromRequest(r *http.Request) (Peer, bool) {
	if r == nil || r.TLS == nil {
		return Peer{}, false
	}
	id, err := spiffetls.PeerIDFromConnectionState(*r.TLS)
	if err != nil {
		return Peer{}, false
	}

	var expiresAt time.Time
	if len(r.TLS.PeerCertificates) > 0 && r.TLS.PeerCertificates[0] != nil {
		expiresAt = r.TLS.PeerCertificates[0].NotAfter
	}
	return Peer{ID: id, ExpiresAt: expiresAt}, true
}

// ProxyTrust returns a predicate that reports whether a request arrived from
// a peer satisfying policy. The identity resolver uses it to decide whether
// X-User-* headers may be believed.
func ProxyTrust(policy Policy, serverTD spiffeid.TrustDomain) func(*http.Request) bool {
	return func(r *http.Request) bool {
		peer, ok := PeerFromRequest(r)
		return ok && policy.Allows(peer.ID, serverTD)
	}
}
