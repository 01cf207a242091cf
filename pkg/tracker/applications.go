package tracker

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/store"
)

const kindApplication = "application"

type ApplicationController struct {
	base
}

func NewApplicationController(log *zap.SugaredLogger, repo Repository, am *audit.Manager, middleware ...gin.HandlerFunc) *ApplicationController {
	return &ApplicationController{base: newBase("applications", repo, log, am, middleware)}
}

func (ApplicationController) BasePath() string {
	return "applications"
}

func (ac *ApplicationController) Register(rg *gin.RouterGroup) error {
	rg.GET("", instrumentedHandler("listApplications", ac.handleList))
	rg.GET("/:id", instrumentedHandler("getApplication", ac.handleGet))
	rg.POST("", instrumentedHandler("createApplication", ac.handleCreate))
	rg.PUT("/:id", instrumentedHandler("updateApplication", ac.handleUpdate))
	rg.DELETE("/:id", instrumentedHandler("deleteApplication", ac.handleDelete))
	return nil
}

func (ac *ApplicationController) handleList(c *gin.Context) {
	apps, err := ac.repo.ListApplications(c.Request.Context())
	if err != nil {
		apiresponses.RespondInternalError(c, "list applications", err, ac.log)
		return
	}
	apiresponses.RespondOK(c, apps)
}

func (ac *ApplicationController) handleGet(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	detail, err := ac.repo.GetApplication(c.Request.Context(), id)
	if err != nil {
		ac.respondStoreError(c, "get application", kindApplication, id, err)
		return
	}
	apiresponses.RespondOK(c, detail)
}

func (ac *ApplicationController) handleCreate(c *gin.Context) {
	var app store.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		apiresponses.RespondBindError(c, err)
		return
	}
	created, err := ac.repo.CreateApplication(c.Request.Context(), app)
	if err != nil {
		ac.respondStoreError(c, "create application", kindApplication, 0, err)
		return
	}
	ac.changed(c, audit.EventResourceCreated, kindApplication, created.ID)
	apiresponses.RespondCreated(c, created)
}

func (ac *ApplicationController) handleUpdate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var app store.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		apiresponses.RespondBindError(c, err)
		return
	}
	updated, err := ac.repo.UpdateApplication(c.Request.Context(), id, app)
	if err != nil {
		ac.respondStoreError(c, "update application", kindApplication, id, err)
		return
	}
	ac.changed(c, audit.EventResourceUpdated, kindApplication, id)
	apiresponses.RespondOK(c, updated)
}

func (ac *ApplicationController) handleDelete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := ac.repo.DeleteApplication(c.Request.Context(), id); err != nil {
		ac.respondStoreError(c, "delete application", kindApplication, id, err)
		return
	}
	ac.changed(c, audit.EventResourceDeleted, kindApplication, id)
	apiresponses.RespondOK(c, gin.H{"message": "Application deleted"})
}
