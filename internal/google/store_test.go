package google

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestTokenStore_LoadAbsent(t *testing.T) {
	store := NewTokenStore(t.TempDir(), nil)

	cred, err := store.Load("nobody@example.com")
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}
	if cred != nil {
		t.Errorf("Load() = %+v, want nil for absent credential", cred)
	}
}

func TestTokenStore_SaveThenLoad(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "tokens"), nil)

	in := &StoredCredential{
		Type:         "authorized_user",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "refresh-token",
	}
	if err := store.Save("user@example.com", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := store.Load("user@example.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out == nil {
		t.Fatal("Load() = nil after Save")
	}
	if *out != *in {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
}

func TestTokenStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")
	store := NewTokenStore(dir, nil)

	err := store.Save("user@example.com", &StoredCredential{
		Type:         "authorized_user",
		RefreshToken: "rt",
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("token directory was not created: %v", err)
	}
}

func TestTokenStore_SaveOverwrites(t *testing.T) {
	store := NewTokenStore(t.TempDir(), nil)

	first := &StoredCredential{Type: "authorized_user", RefreshToken: "old"}
	second := &StoredCredential{Type: "authorized_user", RefreshToken: "new"}

	if err := store.Save("user@example.com", first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save("user@example.com", second); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := store.Load("user@example.com")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.RefreshToken != "new" {
		t.Errorf("RefreshToken = %q, want %q", out.RefreshToken, "new")
	}
}

func TestTokenStore_LoadCorruptTreatedAsAbsent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not JSON", content: "this is not json"},
		{name: "empty file", content: ""},
		{name: "wrong type tag", content: `{"type":"service_account","refresh_token":"rt"}`},
		{name: "missing refresh token", content: `{"type":"authorized_user","client_id":"id"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewTokenStore(dir, nil)

			path := filepath.Join(dir, "user@example.com.json")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			cred, err := store.Load("user@example.com")
			if err != nil {
				t.Fatalf("Load() error = %v, corrupt records must fail open", err)
			}
			if cred != nil {
				t.Errorf("Load() = %+v, want nil for corrupt record", cred)
			}
		})
	}
}

func TestTokenStore_FileFormat(t *testing.T) {
	dir := t.TempDir()
	store := NewTokenStore(dir, nil)

	in := &StoredCredential{
		Type:         "authorized_user",
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "rt",
	}
	if err := store.Save("user@example.com", in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// The record is keyed by email and stored as plain JSON with the
	// authorized_user field names.
	b, err := os.ReadFile(filepath.Join(dir, "user@example.com.json"))
	if err != nil {
		t.Fatalf("token file not found: %v", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("token file is not JSON: %v", err)
	}
	for key, want := range map[string]string{
		"type":          "authorized_user",
		"client_id":     "id",
		"client_secret": "secret",
		"refresh_token": "rt",
	} {
		if raw[key] != want {
			t.Errorf("field %q = %q, want %q", key, raw[key], want)
		}
	}
}

func TestTokenStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewTokenStore(dir, nil)

	if err := store.Save("user@example.com", &StoredCredential{Type: "authorized_user", RefreshToken: "rt"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected exactly one file after Save, got %v", names)
	}
}
