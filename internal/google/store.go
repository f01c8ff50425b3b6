package google

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/calinvite/calinvite/internal/logging"
)

// credentialType is the type tag of stored credential records. It matches
// the "authorized user" format understood by the Google client libraries.
const credentialType = "authorized_user"

// StoredCredential is the on-disk record for one user's refresh token. It
// never expires on its own; validity rests entirely on the refresh token.
type StoredCredential struct {
	Type         string `json:"type"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore persists one StoredCredential per user email under a fixed
// directory. It is the only component that touches these files.
//
// There is no locking around Save for the same user: two concurrent
// first-time authorizations race and the last writer wins. Given the
// expected low concurrency of first-time logins this is accepted.
type TokenStore struct {
	dir    string
	logger *slog.Logger
}

// NewTokenStore creates a TokenStore rooted at dir. The directory is created
// lazily on the first Save.
func NewTokenStore(dir string, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{dir: dir, logger: logger}
}

// Dir returns the directory this store writes to.
func (s *TokenStore) Dir() string {
	return s.dir
}

// Load returns the stored credential for userEmail, or (nil, nil) if none
// exists. A missing, unreadable, or corrupt file is treated identically to
// absence so the caller falls through to re-authorization instead of getting
// stuck on a bad record.
func (s *TokenStore) Load(userEmail string) (*StoredCredential, error) {
	b, err := os.ReadFile(s.path(userEmail))
	if err != nil {
		s.logger.Debug("no saved credentials", logging.UserHash(userEmail))
		return nil, nil
	}

	var cred StoredCredential
	if err := json.Unmarshal(b, &cred); err != nil {
		s.logger.Warn("stored credential is not valid JSON, treating as absent",
			logging.UserHash(userEmail), logging.Err(err))
		return nil, nil
	}
	if cred.Type != credentialType || cred.RefreshToken == "" {
		s.logger.Warn("stored credential is incomplete, treating as absent",
			logging.UserHash(userEmail))
		return nil, nil
	}

	return &cred, nil
}

// Save writes the credential for userEmail, creating the token directory if
// needed. The record is written to a temp file and renamed into place so a
// concurrent Load never observes a partial write.
func (s *TokenStore) Save(userEmail string, cred *StoredCredential) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, userEmail+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(userEmail)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store token file: %w", err)
	}

	s.logger.Debug("saved credentials", logging.UserHash(userEmail))
	return nil
}

func (s *TokenStore) path(userEmail string) string {
	return filepath.Join(s.dir, userEmail+".json")
}
