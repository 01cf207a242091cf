package auth

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/metrics"
	"github.com/jobtracker/jobtracker/pkg/system"
)

// MisconfiguredMessage is returned by Login when no password is configured.
const MisconfiguredMessage = "Server configuration error: ADMIN_PASSWORD not set"

// LoginRequest is the login body.
type LoginRequest struct {
	Password string `json:"password"`
}

// Login checks the submitted password and, on a match, issues a session
// token in the session cookie. An empty body counts as an empty password.
func (a *Authenticator) Login(c *gin.Context) {
	reqLog := system.GetReqLogger(c, a.log)
	actor, rc := audit.FromRequest(c.Request, c.ClientIP())
	ctx := c.Request.Context()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		metrics.LoginAttempts.WithLabelValues("bad_request").Inc()
		apiresponses.RespondBindError(c, err)
		return
	}

	if !a.passwordSet {
		metrics.LoginAttempts.WithLabelValues("misconfigured").Inc()
		reqLog.Error("Login attempted but ADMIN_PASSWORD is not configured")
		a.audit.LoginMisconfigured(ctx, actor, rc)
		apiresponses.RespondMisconfigured(c, MisconfiguredMessage)
		return
	}

	if !a.checkPassword(req.Password) {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		reqLog.Infow("Login rejected", "reason", "invalid_password")
		a.audit.LoginFailed(ctx, actor, rc, "invalid_password")
		apiresponses.RespondInvalidCredentials(c)
		return
	}

	a.cookie.Set(c.Writer, a.codec.Issue())
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	reqLog.Info("Login succeeded")
	a.audit.LoginSucceeded(ctx, actor, rc)
	apiresponses.RespondSuccess(c)
}

// Logout clears the session cookie. It always succeeds.
func (a *Authenticator) Logout(c *gin.Context) {
	a.cookie.Clear(c.Writer)
	metrics.Logouts.Inc()
	actor, rc := audit.FromRequest(c.Request, c.ClientIP())
	a.audit.Logout(c.Request.Context(), actor, rc)
	apiresponses.RespondSuccess(c)
}
