package tracker

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/metrics"
	"github.com/jobtracker/jobtracker/pkg/store"
	"github.com/jobtracker/jobtracker/pkg/system"
)

// Repository is the persistence the controllers need. *store.Store
// implements it.
type Repository interface {
	ListApplications(ctx context.Context) ([]store.ApplicationSummary, error)
	GetApplication(ctx context.Context, id int64) (store.ApplicationDetail, error)
	CreateApplication(ctx context.Context, app store.Application) (store.Application, error)
	UpdateApplication(ctx context.Context, id int64, app store.Application) (store.Application, error)
	DeleteApplication(ctx context.Context, id int64) error

	CreateInterview(ctx context.Context, iv store.Interview) (store.Interview, error)
	DeleteInterview(ctx context.Context, id int64) error
	CreateSkill(ctx context.Context, sk store.Skill) (store.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error

	StatusBreakdown(ctx context.Context) ([]store.StatusCount, error)
	TopSkills(ctx context.Context, limit int) ([]store.SkillCount, error)
	Timeline(ctx context.Context, weeks int) ([]store.WeekCount, error)
}

// base carries what every controller shares.
type base struct {
	repo       Repository
	log        *zap.SugaredLogger
	audit      *audit.Manager
	middleware []gin.HandlerFunc
}

func newBase(name string, repo Repository, log *zap.SugaredLogger, am *audit.Manager, middleware []gin.HandlerFunc) base {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return base{repo: repo, log: log.Named(name), audit: am, middleware: middleware}
}

func (b base) Handlers() []gin.HandlerFunc {
	return b.middleware
}

// instrumentedHandler wraps a gin handler to record API metrics consistently.
// It tracks request counts, latency, and error status codes for the provided endpoint label.
func instrumentedHandler(endpoint string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.APIEndpointRequests.WithLabelValues(endpoint).Inc()
		handler(c)
		metrics.APIEndpointDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		status := c.Writer.Status()
		if status >= 400 {
			metrics.APIEndpointErrors.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
		}
	}
}

// idParam parses the :id path parameter, answering 400 when it is not a
// positive integer.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		apiresponses.RespondBadRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// respondStoreError maps store errors onto the structured error responses.
func (b base) respondStoreError(c *gin.Context, op, kind string, id int64, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		apiresponses.RespondNotFound(c, kind, strconv.FormatInt(id, 10))
	case errors.Is(err, store.ErrInvalid):
		apiresponses.RespondBadRequest(c, strings.TrimPrefix(err.Error(), store.ErrInvalid.Error()+": "))
	default:
		apiresponses.RespondInternalError(c, op, err, system.GetReqLogger(c, b.log))
	}
}

func (b base) changed(c *gin.Context, eventType audit.EventType, kind string, id int64) {
	actor, rc := audit.FromRequest(c.Request, c.ClientIP())
	b.audit.ResourceChanged(c.Request.Context(), eventType, kind, strconv.FormatInt(id, 10), actor, rc)
}
