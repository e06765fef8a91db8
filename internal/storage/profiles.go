package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/profile"
)

const profileColumns = `user_id, name, email, phone, country, city, "current_role", current_ctc,
	linkedin_url, github_url, portfolio_url, parsed_profile`

// UserProfile pairs a stored profile with its owner.
type UserProfile struct {
	UserID  string
	Profile *profile.Profile
}

func scanRecord(row pgx.Row) (*profile.Record, error) {
	var r profile.Record
	if err := row.Scan(
		&r.UserID, &r.Name, &r.Email, &r.Phone, &r.Country, &r.City, &r.CurrentRole, &r.CurrentCTC,
		&r.LinkedInURL, &r.GitHubURL, &r.PortfolioURL, &r.Parsed,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetProfile returns the stored profile of the user with the named columns
// applied over the parsed document.
func (s *Store) GetProfile(ctx context.Context, userID string) (*profile.Profile, error) {
	record, err := scanRecord(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 AND parsed_profile IS NOT NULL`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return record.Profile()
}

// SaveProfile replaces the stored profile of the user.
func (s *Store) SaveProfile(ctx context.Context, userID string, p *profile.Profile) error {
	record, err := profile.NewRecord(userID, p)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (`+profileColumns+`, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   email = EXCLUDED.email,
		   phone = EXCLUDED.phone,
		   country = EXCLUDED.country,
		   city = EXCLUDED.city,
		   "current_role" = EXCLUDED."current_role",
		   current_ctc = EXCLUDED.current_ctc,
		   linkedin_url = EXCLUDED.linkedin_url,
		   github_url = EXCLUDED.github_url,
		   portfolio_url = EXCLUDED.portfolio_url,
		   parsed_profile = EXCLUDED.parsed_profile,
		   updated_at = NOW()`,
		record.UserID, record.Name, record.Email, record.Phone, record.Country, record.City,
		record.CurrentRole, record.CurrentCTC, record.LinkedInURL, record.GitHubURL, record.PortfolioURL,
		[]byte(record.Parsed),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.logger.Debug("profile saved", zap.String("user_id", userID))
	return nil
}

// ListProfiles returns every user that has a parsed profile.
func (s *Store) ListProfiles(ctx context.Context) ([]UserProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE parsed_profile IS NOT NULL ORDER BY user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles query: %w", err)
	}
	defer rows.Close()

	profiles := make([]UserProfile, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles scan: %w", err)
		}

		p, err := record.Profile()
		if err != nil {
			s.logger.Warn("skipping unreadable profile", zap.String("user_id", record.UserID), zap.Error(err))
			continue
		}
		profiles = append(profiles, UserProfile{UserID: record.UserID, Profile: p})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// GetResumeText returns the last resume text of the user or an empty string.
func (s *Store) GetResumeText(ctx context.Context, userID string) (string, error) {
	var text string
	err := s.pool.QueryRow(ctx, `SELECT resume_text FROM profiles WHERE user_id = $1`, userID).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get resume text: %w", err)
	}
	return text, nil
}

// SaveResumeText stores the raw resume text without touching the profile columns.
func (s *Store) SaveResumeText(ctx context.Context, userID, text string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, resume_text, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET resume_text = EXCLUDED.resume_text, updated_at = NOW()`,
		userID, text,
	)
	if err != nil {
		return fmt.Errorf("save resume text: %w", err)
	}
	return nil
}
