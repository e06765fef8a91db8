package profile

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted shape of a profile: the contact fields live in
// discrete columns that the user may edit, while the full parse result is kept
// as an embedded JSON document.
type Record struct {
	UserID       string
	Name         string
	Email        string
	Phone        string
	Country      string
	City         string
	CurrentRole  string
	CurrentCTC   string
	LinkedInURL  string
	GitHubURL    string
	PortfolioURL string
	Parsed       json.RawMessage
}

// NewRecord splits a profile into its stored shape.
func NewRecord(userID string, p *Profile) (*Record, error) {
	if p == nil {
		return nil, fmt.Errorf("profile is required")
	}

	parsed, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal parsed profile: %w", err)
	}

	return &Record{
		UserID:       userID,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Country:      p.Country,
		City:         p.City,
		CurrentRole:  p.CurrentRole,
		CurrentCTC:   p.CurrentCTC,
		LinkedInURL:  p.LinkedInURL,
		GitHubURL:    p.GitHubURL,
		PortfolioURL: p.PortfolioURL,
		Parsed:       parsed,
	}, nil
}

// Profile rebuilds the profile from the record. The embedded document provides
// the base and the named columns always override it, so hand edits made to the
// columns win over the last parse.
func (r *Record) Profile() (*Profile, error) {
	p := &Profile{}
	if len(r.Parsed) > 0 && string(r.Parsed) != "null" {
		if err := json.Unmarshal(r.Parsed, p); err != nil {
			return nil, fmt.Errorf("decode parsed profile: %w", err)
		}
	}

	p.Name = r.Name
	p.Email = r.Email
	p.Phone = r.Phone
	p.Country = r.Country
	p.City = r.City
	p.CurrentRole = r.CurrentRole
	p.CurrentCTC = r.CurrentCTC
	p.LinkedInURL = r.LinkedInURL
	p.GitHubURL = r.GitHubURL
	p.PortfolioURL = r.PortfolioURL

	return p, nil
}
