package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "gemini.key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty.key")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	t.Setenv("JOB_AGENT_TEST_RAPIDAPI_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "inline", src: Source{Name: "rapidapi key", Value: " inline "}, want: "inline"},
		{name: "file wins", src: Source{Name: "gemini key", Value: "inline", File: keyFile}, want: "from-file"},
		{name: "inline wins over env", src: Source{Value: "inline", Env: "JOB_AGENT_TEST_RAPIDAPI_KEY"}, want: "inline"},
		{name: "env", src: Source{Name: "rapidapi key", Env: "JOB_AGENT_TEST_RAPIDAPI_KEY"}, want: "from-env"},
		{name: "missing file", src: Source{Name: "gemini key", File: filepath.Join(dir, "nope")}, wantErr: "reading gemini key"},
		{name: "empty file", src: Source{Name: "smtp password", File: emptyFile}, wantErr: "is empty"},
		{name: "unset env", src: Source{Name: "gemini key", Env: "JOB_AGENT_TEST_UNSET"}, wantErr: "gemini key is not configured (set JOB_AGENT_TEST_UNSET)"},
		{name: "unset", src: Source{}, wantErr: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadOptional(t *testing.T) {
	got, err := LoadOptional(Source{Name: "rapidapi key", Env: "JOB_AGENT_TEST_UNSET"})
	if err != nil || got != "" {
		t.Fatalf("unset optional secret: %q, %v", got, err)
	}

	if _, err := LoadOptional(Source{Name: "rapidapi key", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Fatalf("expected error for unreadable file")
	}
}
