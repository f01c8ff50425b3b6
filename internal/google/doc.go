// Package google provides OAuth2 authentication for the Google APIs used by
// this service.
//
// Credentials are cached per user on disk: TokenStore keeps one
// authorized_user JSON file per email address. Authorizer resolves a user to
// a ready-to-use Handle, reading the store first and falling back to an
// interactive browser consent flow on a cache miss.
//
// The interactive flow blocks the calling goroutine until the user approves
// or the context is cancelled, which makes it unsuitable for unattended
// multi-tenant serving. That is a known limitation of this design, not an
// accident: first-time users are expected to be authorized from a terminal
// (see the authorize command) or by an operator watching the logs.
package google
