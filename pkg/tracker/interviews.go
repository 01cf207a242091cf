package tracker

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/store"
)

const (
	kindInterview = "interview"
	kindSkill     = "skill"
)

// InterviewController serves interview rounds and, under /skills, the skill
// tags of an application.
type InterviewController struct {
	base
}

func NewInterviewController(log *zap.SugaredLogger, repo Repository, am *audit.Manager, middleware ...gin.HandlerFunc) *InterviewController {
	return &InterviewController{base: newBase("interviews", repo, log, am, middleware)}
}

func (InterviewController) BasePath() string {
	return "interviews"
}

func (ic *InterviewController) Register(rg *gin.RouterGroup) error {
	rg.POST("", instrumentedHandler("createInterview", ic.handleCreateInterview))
	rg.DELETE("/:id", instrumentedHandler("deleteInterview", ic.handleDeleteInterview))
	rg.POST("/skills", instrumentedHandler("createSkill", ic.handleCreateSkill))
	rg.DELETE("/skills/:id", instrumentedHandler("deleteSkill", ic.handleDeleteSkill))
	return nil
}

func (ic *InterviewController) handleCreateInterview(c *gin.Context) {
	var iv store.Interview
	if err := c.ShouldBindJSON(&iv); err != nil {
		apiresponses.RespondBindError(c, err)
		return
	}
	created, err := ic.repo.CreateInterview(c.Request.Context(), iv)
	if err != nil {
		ic.respondStoreError(c, "create interview", kindApplication, iv.ApplicationID, err)
		return
	}
	ic.changed(c, audit.EventResourceCreated, kindInterview, created.ID)
	apiresponses.RespondCreated(c, created)
}

func (ic *InterviewController) handleDeleteInterview(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ic.repo.DeleteInterview(c.Request.Context(), id); err != nil {
		ic.respondStoreError(c, "delete interview", kindInterview, id, err)
		return
	}
	ic.changed(c, audit.EventResourceDeleted, kindInterview, id)
	apiresponses.RespondSuccess(c)
}

func (ic *InterviewController) handleCreateSkill(c *gin.Context) {
	var sk store.Skill
	if err := c.ShouldBindJSON(&sk); err != nil {
		apiresponses.RespondBindError(c, err)
		return
	}
	created, err := ic.repo.CreateSkill(c.Request.Context(), sk)
	if err != nil {
		ic.respondStoreError(c, "create skill", kindApplication, sk.ApplicationID, err)
		return
	}
	ic.changed(c, audit.EventResourceCreated, kindSkill, created.ID)
	apiresponses.RespondCreated(c, created)
}

func (ic *InterviewController) handleDeleteSkill(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ic.repo.DeleteSkill(c.Request.Context(), id); err != nil {
		ic.respondStoreError(c, "delete skill", kindSkill, id, err)
		return
	}
	ic.changed(c, audit.EventResourceDeleted, kindSkill, id)
	apiresponses.RespondSuccess(c)
}
