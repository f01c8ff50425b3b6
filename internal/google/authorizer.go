package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/calinvite/calinvite/internal/logging"
)

// Handle is an opaque bearer of one user's provider credentials, usable by
// the calendar and gmail clients. A fresh Handle is built per request; no
// client state is shared across requests.
type Handle struct {
	userEmail   string
	tokenSource oauth2.TokenSource
}

// UserEmail returns the email address this handle authenticates as.
func (h *Handle) UserEmail() string {
	return h.userEmail
}

// TokenSource returns the underlying OAuth2 token source.
func (h *Handle) TokenSource() oauth2.TokenSource {
	return h.tokenSource
}

// HTTPClient returns an HTTP client that authenticates requests with this
// handle's token source. The client is pinned to HTTP/1.1 to avoid HTTP/2
// protocol errors seen with the Google API endpoints.
func (h *Handle) HTTPClient(ctx context.Context) *http.Client {
	client := oauth2.NewClient(ctx, h.tokenSource)

	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client
}

// ConsentFlow obtains a token interactively when no stored credential
// exists. Implementations block until the user approves, the flow fails, or
// ctx is cancelled.
type ConsentFlow interface {
	Obtain(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// Authorizer resolves a user email to a ready-to-use Handle. It uses the
// TokenStore as a cache and the ConsentFlow as the fallback for first-time
// users.
type Authorizer struct {
	conf    *oauth2.Config
	store   *TokenStore
	consent ConsentFlow
	logger  *slog.Logger
}

// NewAuthorizer creates an Authorizer backed by the given application
// credentials and token store, using the loopback browser consent flow.
func NewAuthorizer(conf *oauth2.Config, store *TokenStore, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		conf:    conf,
		store:   store,
		consent: NewLoopbackConsentFlow(logger),
		logger:  logger,
	}
}

// NewAuthorizerWithConsentFlow creates an Authorizer with a custom consent
// flow. Used by tests and by callers that want a non-default flow.
func NewAuthorizerWithConsentFlow(conf *oauth2.Config, store *TokenStore, consent ConsentFlow, logger *slog.Logger) *Authorizer {
	a := NewAuthorizer(conf, store, logger)
	a.consent = consent
	return a
}

// Authorize returns a Handle for userEmail.
//
// If a stored credential exists, the handle is derived solely from the
// stored fields and no network call or consent flow is made. Otherwise the
// interactive consent flow runs, and on success the resulting refresh token
// is persisted before the handle is returned.
func (a *Authorizer) Authorize(ctx context.Context, userEmail string) (*Handle, error) {
	cred, err := a.store.Load(userEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored credentials: %w", err)
	}
	if cred != nil {
		return a.handleFromStored(ctx, userEmail, cred), nil
	}

	a.logger.Info("no saved credentials, starting interactive authorization",
		logging.UserHash(userEmail))

	token, err := a.consent.Obtain(ctx, a.conf)
	if err != nil {
		return nil, fmt.Errorf("interactive authorization failed: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("authorization response contained no refresh token")
	}

	cred = &StoredCredential{
		Type:         credentialType,
		ClientID:     a.conf.ClientID,
		ClientSecret: a.conf.ClientSecret,
		RefreshToken: token.RefreshToken,
	}
	if err := a.store.Save(userEmail, cred); err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}

	a.logger.Info("authorized and saved credentials", logging.UserHash(userEmail))

	return &Handle{
		userEmail:   userEmail,
		tokenSource: a.conf.TokenSource(ctx, token),
	}, nil
}

// handleFromStored builds a Handle from a stored credential record. The
// OAuth2 config is reconstructed from the stored client id/secret rather
// than the live application credentials, so a record survives a rotation of
// credentials.json until the refresh token itself is revoked.
func (a *Authorizer) handleFromStored(ctx context.Context, userEmail string, cred *StoredCredential) *Handle {
	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Endpoint:     a.conf.Endpoint,
		Scopes:       a.conf.Scopes,
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: cred.RefreshToken,
	})

	return &Handle{
		userEmail:   userEmail,
		tokenSource: ts,
	}
}
