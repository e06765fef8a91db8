package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedChats hands out one reply per created chat, in order.
type scriptedChats struct {
	mu       sync.Mutex
	replies  []scriptedReply
	configs  []*genai.GenerateContentConfig
	messages []string
}

func (s *scriptedChats) Create(_ context.Context, _ string, config *genai.GenerateContentConfig, _ []*genai.Content) (chatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return nil, errors.New("unexpected call")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	s.configs = append(s.configs, config)
	return &scriptedChat{owner: s, reply: reply}, nil
}

func (s *scriptedChats) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.configs)
}

type scriptedChat struct {
	owner *scriptedChats
	reply scriptedReply
}

func (c *scriptedChat) SendMessage(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	c.owner.mu.Lock()
	for _, part := range parts {
		c.owner.messages = append(c.owner.messages, part.Text)
	}
	c.owner.mu.Unlock()

	if c.reply.err != nil {
		return nil, c.reply.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: c.reply.text}}},
		}},
	}, nil
}

// newTestGenerator replaces the retry pause with a recorder of requested delays.
func newTestGenerator(t *testing.T, maxRetries int, replies ...scriptedReply) (*Generator, *scriptedChats, *[]time.Duration) {
	t.Helper()

	var delays []time.Duration
	original := wait
	wait = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	t.Cleanup(func() { wait = original })

	chats := &scriptedChats{replies: replies}
	return &Generator{
		chats:      chats,
		model:      "gemini-test",
		maxRetries: maxRetries,
		logger:     zap.NewNop(),
	}, chats, &delays
}

func TestGeneratorRetries(t *testing.T) {
	internal := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	unavailable := genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	shortQuota := genai.APIError{Code: http.StatusTooManyRequests, Message: "Please retry in 1.5s."}
	longQuota := genai.APIError{Code: http.StatusTooManyRequests, Message: "quota exhausted, retry after 60 seconds"}
	badRequest := genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}

	tests := []struct {
		name       string
		maxRetries int
		replies    []scriptedReply
		want       string
		wantErr    bool
		calls      int
		delays     []time.Duration
	}{
		{
			name:       "server errors back off exponentially",
			maxRetries: 3,
			replies:    []scriptedReply{{err: internal}, {err: unavailable}, {text: `{"fit": true}`}},
			want:       `{"fit": true}`,
			calls:      3,
			delays:     []time.Duration{2 * time.Second, 4 * time.Second},
		},
		{
			name:       "attempts are bounded",
			maxRetries: 2,
			replies:    []scriptedReply{{err: internal}, {err: internal}},
			wantErr:    true,
			calls:      2,
			delays:     []time.Duration{2 * time.Second},
		},
		{
			name:       "short quota delay is honoured",
			maxRetries: 3,
			replies:    []scriptedReply{{err: shortQuota}, {text: "ok"}},
			want:       "ok",
			calls:      2,
			delays:     []time.Duration{1500 * time.Millisecond},
		},
		{
			name:       "long quota delay is not retried",
			maxRetries: 3,
			replies:    []scriptedReply{{err: longQuota}},
			wantErr:    true,
			calls:      1,
		},
		{
			name:       "client errors are not retried",
			maxRetries: 3,
			replies:    []scriptedReply{{err: badRequest}},
			wantErr:    true,
			calls:      1,
		},
		{
			name:       "blank reply is an error",
			maxRetries: 1,
			replies:    []scriptedReply{{text: "   "}},
			wantErr:    true,
			calls:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, chats, delays := newTestGenerator(t, tt.maxRetries, tt.replies...)

			got, err := g.GenerateContent(context.Background(), "system", "evaluate this job")
			if tt.wantErr != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if chats.calls() != tt.calls {
				t.Fatalf("expected %d calls, got %d", tt.calls, chats.calls())
			}
			if len(*delays) != len(tt.delays) {
				t.Fatalf("expected delays %v, got %v", tt.delays, *delays)
			}
			for i, d := range tt.delays {
				if (*delays)[i] != d {
					t.Fatalf("expected delays %v, got %v", tt.delays, *delays)
				}
			}
		})
	}
}

func TestGeneratorRequestShape(t *testing.T) {
	g, chats, _ := newTestGenerator(t, 1, scriptedReply{text: "{}"}, scriptedReply{text: "{}"})

	if _, err := g.GenerateContent(context.Background(), " judge fit ", "evaluate this job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg := chats.configs[0]
	if cfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json responses, got %q", cfg.ResponseMIMEType)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "judge fit" {
		t.Fatalf("unexpected system instruction %+v", cfg.SystemInstruction)
	}
	if len(chats.messages) != 1 || chats.messages[0] != "evaluate this job" {
		t.Fatalf("unexpected messages %v", chats.messages)
	}

	if _, err := g.GenerateContent(context.Background(), "", "evaluate this job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chats.configs[1].SystemInstruction != nil {
		t.Fatalf("expected no system instruction")
	}
}

func TestGeneratorRejectsEmptyPrompt(t *testing.T) {
	g, chats, _ := newTestGenerator(t, 1)
	if _, err := g.GenerateContent(context.Background(), "sys", "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if chats.calls() != 0 {
		t.Fatalf("no request expected for an empty prompt")
	}

	var missing *Generator
	if _, err := missing.GenerateContent(context.Background(), "sys", "msg"); err == nil {
		t.Fatal("expected error for nil generator")
	}
}

func TestGeneratorStopsWhenContextDone(t *testing.T) {
	g, chats, _ := newTestGenerator(t, 3, scriptedReply{err: genai.APIError{Code: http.StatusBadGateway}})
	wait = func(ctx context.Context, _ time.Duration) error { return context.Canceled }

	if _, err := g.GenerateContent(context.Background(), "sys", "msg"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if chats.calls() != 1 {
		t.Fatalf("expected single call, got %d", chats.calls())
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		message string
		want    time.Duration
		ok      bool
	}{
		{message: "quota exhausted, retry after 60 seconds", want: time.Minute, ok: true},
		{message: "Please retry in 1.5s.", want: 1500 * time.Millisecond, ok: true},
		{message: "retry after 250ms", want: 250 * time.Millisecond, ok: true},
		{message: "slow down", ok: false},
	}

	for _, tt := range tests {
		got, ok := parseRetryAfter(tt.message)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseRetryAfter(%q) = %s, %v", tt.message, got, ok)
		}
	}
}
