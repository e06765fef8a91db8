package profile

import (
	"encoding/json"
	"testing"
)

func TestRecordProfileNamedColumnsWin(t *testing.T) {
	parsed, _ := json.Marshal(&Profile{
		Name:              "Parsed Name",
		Email:             "old@example.com",
		City:              "Berlin",
		Skills:            []string{"Go", "Docker"},
		YearsOfExperience: 6,
		Seniority:         SenioritySenior,
	})

	record := &Record{
		Name:   "Edited Name",
		Email:  "new@example.com",
		City:   "Munich",
		Parsed: parsed,
	}

	p, err := record.Profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Name != "Edited Name" || p.Email != "new@example.com" || p.City != "Munich" {
		t.Fatalf("named columns must override the parsed document: %+v", p)
	}
	if len(p.Skills) != 2 || p.YearsOfExperience != 6 || p.Seniority != SenioritySenior {
		t.Fatalf("parsed-only fields must be kept: %+v", p)
	}
}

func TestRecordProfileWithoutParsedDocument(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
		p, err := (&Record{Name: "Jane", Parsed: raw}).Profile()
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if p.Name != "Jane" {
			t.Fatalf("expected name from column, got %q", p.Name)
		}
	}
}

func TestRecordProfileInvalidDocument(t *testing.T) {
	if _, err := (&Record{Parsed: json.RawMessage("{")}).Profile(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNewRecordRoundTrip(t *testing.T) {
	in := &Profile{Name: "Jane", GitHubURL: "https://github.com/jane", Domains: []string{"Backend"}}

	record, err := NewRecord("user-1", in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.UserID != "user-1" || record.GitHubURL != in.GitHubURL {
		t.Fatalf("unexpected record: %+v", record)
	}

	out, err := record.Profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "Jane" || len(out.Domains) != 1 {
		t.Fatalf("unexpected profile: %+v", out)
	}

	if _, err := NewRecord("user-1", nil); err == nil {
		t.Fatalf("expected error for nil profile")
	}
}
