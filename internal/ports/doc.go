// Package ports defines the interfaces that decouple the application
// services from storage, identity and time.
//
// Files and responsibilities
// --------------------------
//   - store.go
//   - Store and Tx: the transactional unit every engine operation runs in,
//     plus the ListRepository and ItemRepository views a Tx exposes.
//   - identity.go
//   - IdentityResolver turns an inbound request into a domain.User;
//     SessionStore is the lookup it uses for session cookies.
//   - clock.go
//   - Clock, so the undo window is evaluated against one injectable source.
//
// Each interface records its Error Contract: which domain sentinels an
// implementation returns. Anything else is treated as an internal failure.
package ports
