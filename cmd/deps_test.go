package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/jobs"
)

func sourceNames(sources []jobs.Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names
}

func TestBuildSources(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "jsearch.key")
	if err := os.WriteFile(keyFile, []byte("secret\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	tests := []struct {
		name   string
		config *SourcesConfig
		want   []string
	}{
		{
			name:   "defaults",
			config: &SourcesConfig{},
			want:   []string{jobs.SourceRemotive, jobs.SourceArbeitnow},
		},
		{
			name:   "jsearch without key is skipped",
			config: &SourcesConfig{JSearch: &SourceConfig{}},
			want:   []string{jobs.SourceRemotive, jobs.SourceArbeitnow},
		},
		{
			name: "jsearch with key and remotive disabled",
			config: &SourcesConfig{
				Remotive: &SourceConfig{Disabled: true},
				JSearch:  &SourceConfig{APIKeyFile: keyFile},
			},
			want: []string{jobs.SourceArbeitnow, jobs.SourceJSearch},
		},
		{
			name: "unreadable key file",
			config: &SourcesConfig{
				JSearch: &SourceConfig{APIKeyFile: filepath.Join(t.TempDir(), "missing")},
			},
			want: []string{jobs.SourceRemotive, jobs.SourceArbeitnow},
		},
	}

	t.Setenv("RAPIDAPI_KEY", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sourceNames(buildSources(jobs.NewClient(nil), tt.config, zap.NewNop()))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPromptOverrides(t *testing.T) {
	var missing *PromptConfig
	if o := missing.overrides(); o.Tone != "" || o.UserInstructions != "" {
		t.Fatalf("expected empty overrides, got %+v", o)
	}

	o := (&PromptConfig{Tone: "Formal", DealBreakers: "No relocation"}).overrides()
	if o.Tone != "Formal" || o.DealBreakers != "No relocation" {
		t.Fatalf("unexpected overrides %+v", o)
	}
}

func TestNewMailSenderRequiresConfig(t *testing.T) {
	if _, err := newMailSender(nil); err == nil {
		t.Fatalf("expected error without mail config")
	}
	if _, err := newMailSender(&MailConfig{Host: "smtp.example.com", From: "agent@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
