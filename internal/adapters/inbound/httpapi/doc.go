// Package httpapi is the JSON/HTTP inbound adapter for the todo service.
//
// NewRouter builds the chi handler tree: request ids, access logging, panic
// recovery, CORS, per-request timeouts and authentication, then the /api/v1
// routes. Server runs that handler over plain TCP or SPIFFE mTLS.
package httpapi
