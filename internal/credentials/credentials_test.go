package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSessionFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write session file: %v", err)
	}
	return path
}

func TestGet_LoadsSession(t *testing.T) {
	Reload()
	path := writeSessionFile(t, `{"accessToken":"tok-123","tenantURL":"https://d1.api.augmentcode.com/"}`)

	s, err := Get(path)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.AccessToken != "tok-123" {
		t.Fatalf("access token expect tok-123, got %q", s.AccessToken)
	}
	if s.TenantURL != "https://d1.api.augmentcode.com/" {
		t.Fatalf("tenant url mismatch: %q", s.TenantURL)
	}
}

func TestGet_MissingToken(t *testing.T) {
	Reload()
	path := writeSessionFile(t, `{"tenantURL":"https://d1.api.augmentcode.com/"}`)

	if _, err := Get(path); err == nil {
		t.Fatal("expect error for missing accessToken")
	}
}

func TestGet_InvalidJSON(t *testing.T) {
	Reload()
	path := writeSessionFile(t, `{not json`)

	if _, err := Get(path); err == nil {
		t.Fatal("expect error for invalid json")
	}
}

func TestGet_CachesUntilFileChanges(t *testing.T) {
	Reload()
	path := writeSessionFile(t, `{"accessToken":"tok-a","tenantURL":"https://t/"}`)

	s1, err := Get(path)
	if err != nil {
		t.Fatalf("get #1: %v", err)
	}
	s2, err := Get(path)
	if err != nil {
		t.Fatalf("get #2: %v", err)
	}
	if s1 != s2 {
		t.Fatal("expect cached session pointer on unchanged file")
	}
}

func TestTokenExpiry_NotJWT(t *testing.T) {
	if _, ok := tokenExpiry("not-a-jwt"); ok {
		t.Fatal("expect ok=false for opaque token")
	}
}
