package tracker

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/store"
)

const maxAnalyticsLimit = 100

type AnalyticsController struct {
	base
}

func NewAnalyticsController(log *zap.SugaredLogger, repo Repository, am *audit.Manager, middleware ...gin.HandlerFunc) *AnalyticsController {
	return &AnalyticsController{base: newBase("analytics", repo, log, am, middleware)}
}

func (AnalyticsController) BasePath() string {
	return "analytics"
}

func (ac *AnalyticsController) Register(rg *gin.RouterGroup) error {
	rg.GET("/status-breakdown", instrumentedHandler("statusBreakdown", ac.handleStatusBreakdown))
	rg.GET("/top-skills", instrumentedHandler("topSkills", ac.handleTopSkills))
	rg.GET("/timeline", instrumentedHandler("timeline", ac.handleTimeline))
	return nil
}

// limitQuery reads ?limit=, falling back to def and capping at
// maxAnalyticsLimit.
func limitQuery(c *gin.Context, def int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		apiresponses.RespondBadRequest(c, "limit must be a positive integer")
		return 0, false
	}
	return min(n, maxAnalyticsLimit), true
}

func (ac *AnalyticsController) handleStatusBreakdown(c *gin.Context) {
	rows, err := ac.repo.StatusBreakdown(c.Request.Context())
	if err != nil {
		apiresponses.RespondInternalError(c, "fetch analytics", err, ac.log)
		return
	}
	apiresponses.RespondOK(c, rows)
}

func (ac *AnalyticsController) handleTopSkills(c *gin.Context) {
	limit, ok := limitQuery(c, store.DefaultTopSkills)
	if !ok {
		return
	}
	rows, err := ac.repo.TopSkills(c.Request.Context(), limit)
	if err != nil {
		apiresponses.RespondInternalError(c, "fetch skills", err, ac.log)
		return
	}
	apiresponses.RespondOK(c, rows)
}

func (ac *AnalyticsController) handleTimeline(c *gin.Context) {
	weeks, ok := limitQuery(c, store.DefaultTimelineWeeks)
	if !ok {
		return
	}
	rows, err := ac.repo.Timeline(c.Request.Context(), weeks)
	if err != nil {
		apiresponses.RespondInternalError(c, "fetch timeline", err, ac.log)
		return
	}
	apiresponses.RespondOK(c, rows)
}
