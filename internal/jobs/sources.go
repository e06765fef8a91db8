package jobs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	RemotiveURL  = "https://remotive.com/api/remote-jobs"
	ArbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"
	JSearchURL   = "https://jsearch.p.rapidapi.com/search"

	jsearchHost = "jsearch.p.rapidapi.com"

	defaultSourceLimit = 50
)

// Query is the upstream search request sent to every source.
type Query struct {
	Text     string
	Location string
	Category string
	// DatePosted narrows JSearch results, e.g. "today". Empty means any date.
	DatePosted string
	Limit      int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return defaultSourceLimit
	}
	return q.Limit
}

// Source fetches and normalizes postings from one listing service.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]*Job, error)
}

type RemotiveSource struct {
	client  *Client
	baseURL string
}

func NewRemotive(client *Client, baseURL string) *RemotiveSource {
	if baseURL == "" {
		baseURL = RemotiveURL
	}
	return &RemotiveSource{client: client, baseURL: baseURL}
}

func (s *RemotiveSource) Name() string { return SourceRemotive }

func (s *RemotiveSource) Fetch(ctx context.Context, q Query) ([]*Job, error) {
	params := url.Values{}
	if q.Text != "" {
		params.Set("search", q.Text)
	}
	if category := RemotiveCategory(q.Category); category != "" {
		params.Set("category", category)
	}
	params.Set("limit", strconv.Itoa(q.limit()))

	body, err := s.client.get(ctx, s.baseURL, params, nil)
	if err != nil {
		return nil, fmt.Errorf("remotive: %w", err)
	}

	return s.client.normalizeAll(body, "jobs", SourceRemotive, nil, q.limit()), nil
}

type ArbeitnowSource struct {
	client  *Client
	baseURL string
}

func NewArbeitnow(client *Client, baseURL string) *ArbeitnowSource {
	if baseURL == "" {
		baseURL = ArbeitnowURL
	}
	return &ArbeitnowSource{client: client, baseURL: baseURL}
}

func (s *ArbeitnowSource) Name() string { return SourceArbeitnow }

// Fetch loads the board and filters it locally because the API has no usable
// search parameter.
func (s *ArbeitnowSource) Fetch(ctx context.Context, q Query) ([]*Job, error) {
	body, err := s.client.get(ctx, s.baseURL, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("arbeitnow: %w", err)
	}

	var match func(gjson.Result) bool
	if text := strings.ToLower(q.Text); text != "" {
		match = func(item gjson.Result) bool {
			for _, field := range []string{"title", "company_name", "description"} {
				if strings.Contains(strings.ToLower(item.Get(field).String()), text) {
					return true
				}
			}
			return false
		}
	}

	return s.client.normalizeAll(body, "data", SourceArbeitnow, match, q.limit()), nil
}

type JSearchSource struct {
	client  *Client
	baseURL string
	apiKey  string
}

func NewJSearch(client *Client, baseURL, apiKey string) *JSearchSource {
	if baseURL == "" {
		baseURL = JSearchURL
	}
	return &JSearchSource{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (s *JSearchSource) Name() string { return SourceJSearch }

func (s *JSearchSource) Fetch(ctx context.Context, q Query) ([]*Job, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("jsearch: api key is not configured")
	}

	text := q.Text
	if q.Location != "" {
		text = fmt.Sprintf("%s in %s", text, q.Location)
	}

	params := url.Values{}
	params.Set("query", strings.TrimSpace(text))
	params.Set("page", "1")
	params.Set("num_pages", "1")
	if q.DatePosted != "" {
		params.Set("date_posted", q.DatePosted)
	}

	headers := map[string]string{
		"X-RapidAPI-Key":  s.apiKey,
		"X-RapidAPI-Host": jsearchHost,
	}

	body, err := s.client.get(ctx, s.baseURL, params, headers)
	if err != nil {
		return nil, fmt.Errorf("jsearch: %w", err)
	}

	return s.client.normalizeAll(body, "data", SourceJSearch, nil, q.limit()), nil
}

// normalizeAll maps the array found at path in body onto jobs. Items that are
// not objects or fail to decode are logged and skipped.
func (c *Client) normalizeAll(body []byte, path, source string, match func(gjson.Result) bool, limit int) []*Job {
	items := gjson.GetBytes(body, path).Array()
	result := make([]*Job, 0, len(items))

	for idx, item := range items {
		if len(result) >= limit {
			break
		}
		if match != nil && !match(item) {
			continue
		}

		raw, ok := item.Value().(map[string]any)
		if !ok {
			c.logger.Warn("skipping malformed job item", zap.String("source", source), zap.Int("index", idx))
			continue
		}

		job, err := Normalize(raw, source)
		if err != nil {
			c.logger.Warn("skipping job item", zap.String("source", source), zap.Int("index", idx), zap.Error(err))
			continue
		}
		result = append(result, job)
	}

	return result
}
