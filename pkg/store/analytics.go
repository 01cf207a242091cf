package store

import (
	"context"
	"fmt"
)

const (
	DefaultTopSkills     = 10
	DefaultTimelineWeeks = 12
)

// StatusBreakdown counts applications per status, largest first.
func (s *Store) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) AS count
		FROM applications
		GROUP BY status
		ORDER BY count DESC, status`)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []StatusCount{}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("status breakdown: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// TopSkills returns the limit most frequently tagged skill names.
func (s *Store) TopSkills(ctx context.Context, limit int) ([]SkillCount, error) {
	if limit <= 0 {
		limit = DefaultTopSkills
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT skill_name, COUNT(*) AS count
		FROM skills
		GROUP BY skill_name
		ORDER BY count DESC, skill_name
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []SkillCount{}
	for rows.Next() {
		var sc SkillCount
		if err := rows.Scan(&sc.SkillName, &sc.Count); err != nil {
			return nil, fmt.Errorf("top skills: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Timeline counts applications per Monday-based week for the most recent
// weeks that have applications, newest first.
func (s *Store) Timeline(ctx context.Context, weeks int) ([]WeekCount, error) {
	if weeks <= 0 {
		weeks = DefaultTimelineWeeks
	}
	// 'weekday 0' advances to the next Sunday (or stays on one); six days
	// back is that week's Monday.
	rows, err := s.db.QueryContext(ctx, `
		SELECT date(date_applied, 'weekday 0', '-6 days') AS week, COUNT(*) AS count
		FROM applications
		GROUP BY week
		ORDER BY week DESC
		LIMIT ?`, weeks)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []WeekCount{}
	for rows.Next() {
		var wc WeekCount
		if err := rows.Scan(&wc.Week, &wc.Count); err != nil {
			return nil, fmt.Errorf("timeline: %w", err)
		}
		out = append(out, wc)
	}
	return out, rows.Err()
}
