// Package applications tracks jobs the user saved and the progress made on them.
package applications

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/job-agent/internal/jobs"
)

type Status string

const (
	StatusSaved     Status = "saved"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

var ErrUnknownStatus = errors.New("unknown application status")

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range Statuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Application is a saved job. ID is the job id and DBID the storage row id.
type Application struct {
	ID         string    `json:"id"`
	DBID       string    `json:"dbId,omitempty"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	Salary     *string   `json:"salary"`
	ApplyLink  string    `json:"applyLink"`
	Status     Status    `json:"status"`
	MatchScore int       `json:"matchScore"`
	SavedAt    time.Time `json:"savedAt"`
	Notes      string    `json:"notes"`
}

// FromJob snapshots a job into a new application. The match score is frozen
// at this point and is not recomputed later.
func FromJob(job *jobs.Job, now time.Time) (*Application, error) {
	if job == nil {
		return nil, errors.New("job is required")
	}
	if strings.TrimSpace(job.ID) == "" {
		return nil, errors.New("job id is required")
	}

	var salary *string
	if job.Salary != nil {
		s := *job.Salary
		salary = &s
	}

	return &Application{
		ID:         job.ID,
		Title:      job.Title,
		Company:    job.Company,
		Location:   job.Location,
		Salary:     salary,
		ApplyLink:  job.ApplyLink,
		Status:     StatusSaved,
		MatchScore: job.Score(),
		SavedAt:    now.UTC(),
	}, nil
}

// Update holds the mutable fields of an application. Nil fields are left as is.
type Update struct {
	Status *Status `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

func (u Update) Empty() bool {
	return u.Status == nil && u.Notes == nil
}

// Validate rejects unknown statuses.
func (u Update) Validate() error {
	if u.Status == nil {
		return nil
	}
	_, err := ParseStatus(string(*u.Status))
	return err
}

// Normalize validates the update and returns it with the canonical status name.
func (u Update) Normalize() (Update, error) {
	if u.Status == nil {
		return u, nil
	}
	status, err := ParseStatus(string(*u.Status))
	if err != nil {
		return u, err
	}
	u.Status = &status
	return u, nil
}

func (u Update) ApplyTo(a *Application) {
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
}
