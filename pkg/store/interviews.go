package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *Store) listInterviews(ctx context.Context, applicationID int64) ([]Interview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, interview_date, round_type, interviewer_name,
			questions_asked, my_answers, outcome, notes, created_at
		FROM interviews WHERE application_id = ?
		ORDER BY interview_date, id`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing interviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Interview{}
	for rows.Next() {
		var (
			iv        Interview
			createdAt string
		)
		if err := rows.Scan(&iv.ID, &iv.ApplicationID, &iv.InterviewDate, &iv.RoundType, &iv.InterviewerName,
			&iv.QuestionsAsked, &iv.MyAnswers, &iv.Outcome, &iv.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning interview: %w", err)
		}
		iv.CreatedAt = parseTime(createdAt)
		out = append(out, iv)
	}
	return out, rows.Err()
}

func (s *Store) listSkills(ctx context.Context, applicationID int64) ([]Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, application_id, skill_name, skill_type, created_at
		FROM skills WHERE application_id = ?
		ORDER BY id`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Skill{}
	for rows.Next() {
		var (
			sk        Skill
			createdAt string
		)
		if err := rows.Scan(&sk.ID, &sk.ApplicationID, &sk.SkillName, &sk.SkillType, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning skill: %w", err)
		}
		sk.CreatedAt = parseTime(createdAt)
		out = append(out, sk)
	}
	return out, rows.Err()
}

// requireApplication returns ErrNotFound unless application id exists.
func (s *Store) requireApplication(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM applications WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateInterview records an interview round for an existing application.
// Outcome defaults to pending.
func (s *Store) CreateInterview(ctx context.Context, iv Interview) (Interview, error) {
	if iv.ApplicationID <= 0 {
		return Interview{}, invalid("application_id required")
	}
	if iv.RoundType != "" && !iv.RoundType.Valid() {
		return Interview{}, invalid("unknown round_type %q", iv.RoundType)
	}
	if iv.Outcome == "" {
		iv.Outcome = OutcomePending
	}
	if !iv.Outcome.Valid() {
		return Interview{}, invalid("unknown outcome %q", iv.Outcome)
	}
	if err := s.requireApplication(ctx, iv.ApplicationID); err != nil {
		return Interview{}, err
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interviews (application_id, interview_date, round_type, interviewer_name,
			questions_asked, my_answers, outcome, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		iv.ApplicationID, iv.InterviewDate, iv.RoundType, iv.InterviewerName,
		iv.QuestionsAsked, iv.MyAnswers, iv.Outcome, iv.Notes, now)
	if err != nil {
		return Interview{}, fmt.Errorf("creating interview: %w", err)
	}
	if iv.ID, err = res.LastInsertId(); err != nil {
		return Interview{}, fmt.Errorf("creating interview: %w", err)
	}
	iv.CreatedAt = parseTime(now)
	return iv, nil
}

func (s *Store) DeleteInterview(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM interviews WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting interview %d: %w", id, err)
	}
	return rowsAffectedOrNotFound(res)
}

// CreateSkill tags an existing application with a skill. Type defaults to
// required.
func (s *Store) CreateSkill(ctx context.Context, sk Skill) (Skill, error) {
	if sk.ApplicationID <= 0 || blank(sk.SkillName) {
		return Skill{}, invalid("application_id and skill_name required")
	}
	if sk.SkillType == "" {
		sk.SkillType = SkillRequired
	}
	if !sk.SkillType.Valid() {
		return Skill{}, invalid("unknown skill_type %q", sk.SkillType)
	}
	if err := s.requireApplication(ctx, sk.ApplicationID); err != nil {
		return Skill{}, err
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO skills (application_id, skill_name, skill_type, created_at)
		VALUES (?, ?, ?, ?)`, sk.ApplicationID, sk.SkillName, sk.SkillType, now)
	if err != nil {
		return Skill{}, fmt.Errorf("creating skill: %w", err)
	}
	if sk.ID, err = res.LastInsertId(); err != nil {
		return Skill{}, fmt.Errorf("creating skill: %w", err)
	}
	sk.CreatedAt = parseTime(now)
	return sk, nil
}

func (s *Store) DeleteSkill(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM skills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting skill %d: %w", id, err)
	}
	return rowsAffectedOrNotFound(res)
}
