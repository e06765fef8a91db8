package digest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-agent/internal/applications"
	"github.com/spigell/job-agent/internal/jobs"
	"github.com/spigell/job-agent/internal/profile"
	"github.com/spigell/job-agent/internal/storage"
)

func TestCompose(t *testing.T) {
	list := []*jobs.Job{
		{ID: "1", Title: "Go <Engineer>", Company: "Acme", Location: "Berlin", ApplyLink: "https://acme.example/apply", Match: &jobs.MatchResult{Total: 88, Explanation: "Strong skill overlap with your profile."}},
		{ID: "2", Title: "SRE", Company: "Beta"},
	}

	msg, err := Compose("jane@example.com", "", list, "https://dashboard.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "2 New Job Matches for You" || msg.To != "jane@example.com" {
		t.Fatalf("unexpected header %+v", msg)
	}

	for _, want := range []string{
		"Hi Job Seeker,",
		"top 2 jobs",
		"Go &lt;Engineer&gt;",
		"<strong>Beta</strong> • Remote",
		"88% match",
		`href="https://acme.example/apply"`,
		`href="https://dashboard.example"`,
	} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("digest misses %q:\n%s", want, msg.HTML)
		}
	}

	if _, err := Compose("", "Jane", list, ""); err == nil {
		t.Fatalf("expected error without recipient")
	}
	if _, err := Compose("jane@example.com", "Jane", nil, ""); err == nil {
		t.Fatalf("expected error without jobs")
	}
	if Subject(1) != "1 New Job Match for You" {
		t.Fatalf("unexpected singular subject %q", Subject(1))
	}
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		p        *profile.Profile
		text     string
		location string
	}{
		{name: "no skills", p: &profile.Profile{}, text: "Software Engineer", location: "Remote"},
		{name: "one skill", p: &profile.Profile{Skills: []string{"Go"}, Country: "Germany"}, text: "Go Developer", location: "Germany"},
		{name: "first two skills", p: &profile.Profile{Skills: []string{"Python", "AWS", "Docker"}, City: "Berlin", Country: "Germany"}, text: "Python AWS Developer", location: "Berlin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := SearchQuery(tt.p)
			if q.Text != tt.text || q.Location != tt.location {
				t.Fatalf("got %q in %q", q.Text, q.Location)
			}
		})
	}
}

type fakeProfiles struct {
	profiles []storage.UserProfile
	err      error
}

func (f *fakeProfiles) ListProfiles(context.Context) ([]storage.UserProfile, error) {
	return f.profiles, f.err
}

type stubSource struct {
	jobs    []*jobs.Job
	queries []jobs.Query
	mu      sync.Mutex
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(_ context.Context, q jobs.Query) ([]*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)

	out := make([]*jobs.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.Clone())
	}
	return out, nil
}

type recordingSender struct {
	sent []*Message
	fail map[string]bool
}

func (r *recordingSender) Send(_ context.Context, msg *Message) error {
	if r.fail[msg.To] {
		return errors.New("smtp unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

type savedStore map[string][]*applications.Application

func (s savedStore) ListApplications(_ context.Context, userID string) ([]*applications.Application, error) {
	return s[userID], nil
}

func TestAgentRunOnce(t *testing.T) {
	source := &stubSource{jobs: []*jobs.Job{
		{ID: "a", Title: "Go Developer", Company: "Acme", IsRemote: true, Skills: []string{"Go"}},
		{ID: "b", Title: "Go Developer", Company: "acme", IsRemote: true, Skills: []string{"Go"}},
		{ID: "c", Title: "Python Developer", Company: "Beta", Skills: []string{"Python"}},
		{ID: "d", Title: "Crypto Go Developer", Company: "Gamma", Skills: []string{"Go"}},
		{ID: "e", Title: "Go Engineer", Company: "Saved Inc", Skills: []string{"Go"}},
	}}
	profiles := &fakeProfiles{profiles: []storage.UserProfile{
		{UserID: "u1", Profile: &profile.Profile{Name: "Jane", Email: "jane@example.com", Skills: []string{"Go"}}},
		{UserID: "u2", Profile: &profile.Profile{Name: "No Mail"}},
		{UserID: "u3", Profile: &profile.Profile{Name: "Bob", Email: "bob@example.com", Skills: []string{"Go"}}},
	}}
	sender := &recordingSender{fail: map[string]bool{"bob@example.com": true}}
	core, observed := observer.New(zapcore.InfoLevel)

	agent, err := NewAgent(Config{TopN: 2, RedFlags: []string{"crypto"}}, &Deps{
		Profiles:     profiles,
		Sources:      []jobs.Source{source},
		Sender:       sender,
		Applications: savedStore{"u1": {{ID: "e"}}},
		Logger:       zap.New(core),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := agent.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report != (Report{Profiles: 3, Skipped: 1, Sent: 1, Failed: 1}) {
		t.Fatalf("unexpected report %+v", report)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one digest, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "jane@example.com" || msg.Subject != "2 New Job Matches for You" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if strings.Contains(msg.HTML, "Crypto") || strings.Contains(msg.HTML, "Saved Inc") {
		t.Fatalf("filtered jobs leaked into digest:\n%s", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "Hi Jane,") {
		t.Fatalf("unexpected greeting:\n%s", msg.HTML)
	}

	if source.queries[0].Text != "Go Developer" || source.queries[0].DatePosted != "today" {
		t.Fatalf("unexpected query %+v", source.queries[0])
	}
	if observed.FilterMessage("job agent failed for user").Len() != 1 {
		t.Fatalf("expected failure log for bob")
	}
}

func TestAgentRunOnceListFailure(t *testing.T) {
	agent, err := NewAgent(Config{}, &Deps{
		Profiles: &fakeProfiles{err: errors.New("db down")},
		Sources:  []jobs.Source{&stubSource{}},
		Sender:   &recordingSender{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := agent.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	if _, err := NewAgent(Config{}, &Deps{Profiles: &fakeProfiles{}, Sender: &recordingSender{}}); err == nil {
		t.Fatalf("expected error without sources")
	}
}

type countingRunner struct {
	calls chan struct{}
}

func (r *countingRunner) RunOnce(context.Context) (Report, error) {
	r.calls <- struct{}{}
	return Report{}, nil
}

func TestSchedulerRunsImmediately(t *testing.T) {
	runner := &countingRunner{calls: make(chan struct{}, 1)}
	s := NewScheduler(runner, "@every 1h", zap.NewNop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	select {
	case <-runner.calls:
	case <-time.After(5 * time.Second):
		t.Fatalf("agent did not run on start")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingRunner{calls: make(chan struct{}, 1)}, "every now and then", nil)
	if err := s.Start(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMailConfigValidate(t *testing.T) {
	if err := (MailConfig{}).Validate(); err == nil {
		t.Fatalf("expected error without host")
	}
	if err := (MailConfig{Host: "smtp.example.com"}).Validate(); err == nil {
		t.Fatalf("expected error without sender")
	}
	if _, err := NewMailSender(MailConfig{Host: "smtp.example.com", Username: "agent@example.com", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
