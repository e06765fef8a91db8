// Package digest emails users the best new job matches for their profile.
package digest

import (
	"bytes"
	"fmt"
	"html/template"

	_ "embed"

	"github.com/spigell/job-agent/internal/jobs"
)

//go:embed digest.html
var digestTemplate string

var bodyTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"location": func(job *jobs.Job) string {
		if job.Location == "" {
			return "Remote"
		}
		return job.Location
	},
}).Parse(digestTemplate))

// Message is a rendered digest ready to be sent.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Compose renders the digest for one recipient.
func Compose(to, name string, list []*jobs.Job, dashboardURL string) (*Message, error) {
	if to == "" {
		return nil, fmt.Errorf("recipient address is required")
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("digest needs at least one job")
	}
	if name == "" {
		name = "Job Seeker"
	}

	var body bytes.Buffer
	err := bodyTemplate.Execute(&body, struct {
		Name         string
		Jobs         []*jobs.Job
		DashboardURL string
	}{name, list, dashboardURL})
	if err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}

	return &Message{
		To:      to,
		Subject: Subject(len(list)),
		HTML:    body.String(),
	}, nil
}

func Subject(n int) string {
	if n == 1 {
		return "1 New Job Match for You"
	}
	return fmt.Sprintf("%d New Job Matches for You", n)
}
