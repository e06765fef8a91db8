package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spigell/job-agent/internal/applications"
)

const applicationColumns = `id::text, job_id, title, company, location, salary, apply_link, status, match_score, notes, saved_at`

func scanApplication(row pgx.Row) (*applications.Application, error) {
	var (
		a      applications.Application
		status string
	)
	if err := row.Scan(
		&a.DBID, &a.ID, &a.Title, &a.Company, &a.Location, &a.Salary, &a.ApplyLink,
		&status, &a.MatchScore, &a.Notes, &a.SavedAt,
	); err != nil {
		return nil, err
	}
	a.Status = applications.Status(status)
	a.SavedAt = a.SavedAt.UTC()
	return &a, nil
}

// ListApplications returns the applications of the user, newest first.
func (s *Store) ListApplications(ctx context.Context, userID string) ([]*applications.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 ORDER BY saved_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list applications query: %w", err)
	}
	defer rows.Close()

	apps := make([]*applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("list applications scan: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// AddApplication stores a new application. Saving the same job twice fails
// with ErrAlreadyExists.
func (s *Store) AddApplication(ctx context.Context, userID string, app *applications.Application) (*applications.Application, error) {
	if app == nil || app.ID == "" {
		return nil, fmt.Errorf("application with a job id is required")
	}

	status := app.Status
	if status == "" {
		status = applications.StatusSaved
	}
	savedAt := app.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	stored, err := scanApplication(s.pool.QueryRow(ctx,
		`INSERT INTO applications (id, user_id, job_id, title, company, location, salary, apply_link, status, match_score, notes, saved_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (user_id, job_id) DO NOTHING
		 RETURNING `+applicationColumns,
		uuid.NewString(), userID, app.ID, app.Title, app.Company, app.Location, app.Salary, app.ApplyLink,
		string(status), app.MatchScore, app.Notes, savedAt.UTC(),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("application %q: %w", app.ID, ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("add application: %w", err)
	}

	s.logger.Info("application saved",
		zap.String("user_id", userID),
		zap.String("job_id", stored.ID),
		zap.Int("match_score", stored.MatchScore),
	)
	return stored, nil
}

// UpdateApplication changes the status and notes that are set in upd.
func (s *Store) UpdateApplication(ctx context.Context, userID, jobID string, upd applications.Update) (*applications.Application, error) {
	if upd.Empty() {
		return nil, fmt.Errorf("nothing to update")
	}
	upd, err := upd.Normalize()
	if err != nil {
		return nil, err
	}

	var status *string
	if upd.Status != nil {
		v := string(*upd.Status)
		status = &v
	}

	stored, err := scanApplication(s.pool.QueryRow(ctx,
		`UPDATE applications
		 SET status = COALESCE($3::text, status), notes = COALESCE($4::text, notes)
		 WHERE user_id = $1 AND job_id = $2
		 RETURNING `+applicationColumns,
		userID, jobID, status, upd.Notes,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("application %q: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	return stored, nil
}

// RemoveApplication deletes the application for the job.
func (s *Store) RemoveApplication(ctx context.Context, userID, jobID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return fmt.Errorf("remove application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("application %q: %w", jobID, ErrNotFound)
	}
	return nil
}
