package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jobtracker/jobtracker/pkg/store"
)

func applicationPath(id int64) string {
	return "/api/applications/" + strconv.FormatInt(id, 10)
}

func (c *Client) ListApplications(ctx context.Context) ([]store.ApplicationSummary, error) {
	var apps []store.ApplicationSummary
	if err := c.do(ctx, http.MethodGet, "/api/applications", nil, nil, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *Client) GetApplication(ctx context.Context, id int64) (*store.ApplicationDetail, error) {
	var detail store.ApplicationDetail
	if err := c.do(ctx, http.MethodGet, applicationPath(id), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *Client) CreateApplication(ctx context.Context, app store.Application) (*store.Application, error) {
	var created store.Application
	if err := c.do(ctx, http.MethodPost, "/api/applications", nil, app, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id int64, app store.Application) (*store.Application, error) {
	var updated store.Application
	if err := c.do(ctx, http.MethodPut, applicationPath(id), nil, app, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteApplication removes an application with its interviews and skills.
func (c *Client) DeleteApplication(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, applicationPath(id), nil, nil, nil)
}

func (c *Client) CreateInterview(ctx context.Context, iv store.Interview) (*store.Interview, error) {
	var created store.Interview
	if err := c.do(ctx, http.MethodPost, "/api/interviews", nil, iv, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteInterview(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/interviews/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) CreateSkill(ctx context.Context, sk store.Skill) (*store.Skill, error) {
	var created store.Skill
	if err := c.do(ctx, http.MethodPost, "/api/interviews/skills", nil, sk, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteSkill(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/interviews/skills/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) StatusBreakdown(ctx context.Context) ([]store.StatusCount, error) {
	var rows []store.StatusCount
	if err := c.do(ctx, http.MethodGet, "/api/analytics/status-breakdown", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// TopSkills returns the most requested skills. A limit of zero uses the
// server default.
func (c *Client) TopSkills(ctx context.Context, limit int) ([]store.SkillCount, error) {
	var rows []store.SkillCount
	if err := c.do(ctx, http.MethodGet, "/api/analytics/top-skills", limitQuery(limit), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Timeline returns weekly application counts, most recent week first.
func (c *Client) Timeline(ctx context.Context, weeks int) ([]store.WeekCount, error) {
	var rows []store.WeekCount
	if err := c.do(ctx, http.MethodGet, "/api/analytics/timeline", limitQuery(weeks), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}
