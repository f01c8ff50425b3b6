package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"golang.org/x/oauth2"
)

// flowShutdownTimeout bounds shutdown of the temporary callback server.
const flowShutdownTimeout = 5 * time.Second

// LoopbackConsentFlow runs the OAuth2 authorization-code exchange against a
// temporary HTTP listener on the loopback interface. It logs the consent
// URL, tries to open the user's browser, and blocks until Google redirects
// back with a code or ctx is cancelled.
type LoopbackConsentFlow struct {
	logger *slog.Logger

	// openBrowser launches the consent URL; replaced in tests.
	openBrowser func(url string) error
}

// NewLoopbackConsentFlow creates the default browser-based consent flow.
func NewLoopbackConsentFlow(logger *slog.Logger) *LoopbackConsentFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoopbackConsentFlow{
		logger:      logger,
		openBrowser: openBrowser,
	}
}

// callbackResult carries the outcome of the redirect back from Google.
type callbackResult struct {
	code string
	err  error
}

// Obtain implements ConsentFlow. It requests offline access with forced
// approval so the exchange always yields a refresh token, even when the user
// has granted these scopes before.
func (f *LoopbackConsentFlow) Obtain(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to open loopback listener: %w", err)
	}

	state, err := randomState()
	if err != nil {
		ln.Close()
		return nil, err
	}

	// Copy the config so the redirect URL of this one flow does not leak
	// into the shared application config.
	flowConf := *conf
	flowConf.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())

	results := make(chan callbackResult, 1)

	// Only the first hit on /callback decides the flow. Browsers reload and
	// users double-click; later hits must not block their handler goroutines,
	// or the deferred Shutdown stalls on them.
	deliver := func(res callbackResult) {
		select {
		case results <- res:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("authorization state mismatch")})
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "authorization denied", http.StatusForbidden)
			deliver(callbackResult{err: fmt.Errorf("authorization denied: %s", errCode)})
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			deliver(callbackResult{err: fmt.Errorf("authorization redirect carried no code")})
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Authorization complete. You can close this window.</body></html>")
		deliver(callbackResult{code: code})
	})

	srv := &http.Server{Handler: mux}
	go func() {
		// ErrServerClosed is the normal exit path.
		_ = srv.Serve(ln)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), flowShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	f.logger.Info("waiting for authorization, open this URL in a browser", "url", authURL)
	if err := f.openBrowser(authURL); err != nil {
		f.logger.Debug("could not open browser, URL must be opened manually", "error", err.Error())
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization abandoned: %w", ctx.Err())
	}
	if result.err != nil {
		return nil, result.err
	}

	token, err := flowConf.Exchange(ctx, result.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return token, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openBrowser opens url in the default browser of the host platform.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
