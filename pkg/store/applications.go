package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const applicationColumns = `a.id, a.company_name, a.position_title, a.job_url, a.date_applied, a.status,
	a.salary_min, a.salary_max, a.location, a.job_description, a.notes, a.created_at, a.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner, extra ...any) (Application, error) {
	var (
		app                  Application
		salaryMin, salaryMax sql.NullInt64
		createdAt, updatedAt string
	)
	dest := []any{
		&app.ID, &app.CompanyName, &app.PositionTitle, &app.JobURL, &app.DateApplied, &app.Status,
		&salaryMin, &salaryMax, &app.Location, &app.JobDescription, &app.Notes, &createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return app, err
	}
	app.SalaryMin = intPtr(salaryMin)
	app.SalaryMax = intPtr(salaryMax)
	app.CreatedAt = parseTime(createdAt)
	app.UpdatedAt = parseTime(updatedAt)
	return app, nil
}

// normalize validates app and fills defaults in place.
func (app *Application) normalize() error {
	if blank(app.CompanyName) || blank(app.PositionTitle) || blank(app.DateApplied) {
		return invalid("company_name, position_title and date_applied are required")
	}
	if _, err := time.Parse(DateLayout, app.DateApplied); err != nil {
		return invalid("date_applied must be formatted as YYYY-MM-DD")
	}
	if app.Status == "" {
		app.Status = StatusApplied
	}
	if !app.Status.Valid() {
		return invalid("unknown status %q", app.Status)
	}
	if app.SalaryMin != nil && app.SalaryMax != nil && *app.SalaryMin > *app.SalaryMax {
		return invalid("salary_min must not exceed salary_max")
	}
	return nil
}

// ListApplications returns every application with its interview and skill
// counts, most recently applied first.
func (s *Store) ListApplications(ctx context.Context) ([]ApplicationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`,
			(SELECT COUNT(*) FROM interviews i WHERE i.application_id = a.id),
			(SELECT COUNT(*) FROM skills sk WHERE sk.application_id = a.id)
		FROM applications a
		ORDER BY a.date_applied DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []ApplicationSummary{}
	for rows.Next() {
		var sum ApplicationSummary
		app, err := scanApplication(rows, &sum.InterviewCount, &sum.SkillsCount)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		sum.Application = app
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetApplication returns the application with its interviews (by date) and
// skills.
func (s *Store) GetApplication(ctx context.Context, id int64) (ApplicationDetail, error) {
	var detail ApplicationDetail

	app, err := s.getApplication(ctx, id)
	if err != nil {
		return detail, err
	}
	detail.Application = app

	if detail.Interviews, err = s.listInterviews(ctx, id); err != nil {
		return detail, err
	}
	if detail.Skills, err = s.listSkills(ctx, id); err != nil {
		return detail, err
	}
	return detail, nil
}

func (s *Store) getApplication(ctx context.Context, id int64) (Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return app, ErrNotFound
	}
	if err != nil {
		return app, fmt.Errorf("reading application %d: %w", id, err)
	}
	return app, nil
}

// CreateApplication inserts app. Status defaults to applied.
func (s *Store) CreateApplication(ctx context.Context, app Application) (Application, error) {
	if err := app.normalize(); err != nil {
		return Application{}, err
	}
	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (company_name, position_title, job_url, date_applied, status,
			salary_min, salary_max, location, job_description, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.CompanyName, app.PositionTitle, app.JobURL, app.DateApplied, app.Status,
		nullInt(app.SalaryMin), nullInt(app.SalaryMax), app.Location, app.JobDescription, app.Notes, now, now)
	if err != nil {
		return Application{}, fmt.Errorf("creating application: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Application{}, fmt.Errorf("creating application: %w", err)
	}
	return s.getApplication(ctx, id)
}

// UpdateApplication replaces every editable field of application id.
func (s *Store) UpdateApplication(ctx context.Context, id int64, app Application) (Application, error) {
	if err := app.normalize(); err != nil {
		return Application{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET company_name = ?, position_title = ?, job_url = ?, date_applied = ?, status = ?,
			salary_min = ?, salary_max = ?, location = ?, job_description = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		app.CompanyName, app.PositionTitle, app.JobURL, app.DateApplied, app.Status,
		nullInt(app.SalaryMin), nullInt(app.SalaryMax), app.Location, app.JobDescription, app.Notes,
		s.timestamp(), id)
	if err != nil {
		return Application{}, fmt.Errorf("updating application %d: %w", id, err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		return Application{}, err
	}
	return s.getApplication(ctx, id)
}

// DeleteApplication removes the application together with its interviews
// and skills.
func (s *Store) DeleteApplication(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	for _, q := range []string{
		"DELETE FROM interviews WHERE application_id = ?",
		"DELETE FROM skills WHERE application_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting application %d: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM applications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting application %d: %w", id, err)
	}
	if err := rowsAffectedOrNotFound(res); err != nil {
		return err
	}
	return tx.Commit()
}
