package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jobtracker/jobtracker/pkg/apiresponses"
	"github.com/jobtracker/jobtracker/pkg/audit"
	"github.com/jobtracker/jobtracker/pkg/metrics"
	"github.com/jobtracker/jobtracker/pkg/session"
	"github.com/jobtracker/jobtracker/pkg/system"
)

// Default public endpoints. They bypass the gate but not the rate limiter.
const (
	LoginPath  = "/api/login"
	LogoutPath = "/api/logout"
)

// Outcome is the gate's verdict for one request.
type Outcome int

const (
	Challenge Outcome = iota
	Pass
)

func (o Outcome) String() string {
	if o == Pass {
		return "pass"
	}
	return "challenge"
}

// Reason explains an Outcome.
type Reason string

const (
	ReasonPublicPath Reason = "public_path"
	ReasonValid      Reason = "valid"
	ReasonMissing    Reason = "missing"
	ReasonMalformed  Reason = "malformed"
	ReasonInvalid    Reason = "invalid"
)

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	Reason  Reason
	// HadCookie reports whether the request presented a session cookie.
	HadCookie bool
}

// Options configures an Authenticator. Codec is required.
type Options struct {
	Codec *session.Codec
	// AdminPassword is the shared operator password. Empty means the
	// server is misconfigured and every login reports a server error.
	AdminPassword string
	Cookie        session.CookiePolicy
	// PublicPaths bypass the gate. Default: LoginPath and LogoutPath.
	PublicPaths []string
	Audit       *audit.Manager
	Log         *zap.SugaredLogger
}

// Authenticator is the session gate. It holds only immutable state and is
// safe for concurrent use.
type Authenticator struct {
	codec          *session.Codec
	cookie         session.CookiePolicy
	public         map[string]struct{}
	passwordSet    bool
	passwordDigest [sha256.Size]byte
	audit          *audit.Manager
	log            *zap.SugaredLogger
}

// New builds an Authenticator from opts.
func New(opts Options) *Authenticator {
	paths := opts.PublicPaths
	if paths == nil {
		paths = []string{LoginPath, LogoutPath}
	}
	public := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		public[p] = struct{}{}
	}

	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cookie := opts.Cookie
	if cookie.Name == "" {
		cookie.Name = session.CookieName
	}

	return &Authenticator{
		codec:          opts.Codec,
		cookie:         cookie,
		public:         public,
		passwordSet:    opts.AdminPassword != "",
		passwordDigest: sha256.Sum256([]byte(opts.AdminPassword)),
		audit:          opts.Audit,
		log:            log.Named("auth"),
	}
}

// Decide classifies r without side effects.
func (a *Authenticator) Decide(r *http.Request) Decision {
	if _, ok := a.public[r.URL.Path]; ok {
		return Decision{Outcome: Pass, Reason: ReasonPublicPath}
	}

	token, ok := a.cookie.Read(r)
	if !ok {
		return Decision{Outcome: Challenge, Reason: ReasonMissing}
	}

	switch a.codec.Verify(token) {
	case session.Valid:
		return Decision{Outcome: Pass, Reason: ReasonValid, HadCookie: true}
	case session.Invalid:
		return Decision{Outcome: Challenge, Reason: ReasonInvalid, HadCookie: true}
	default:
		return Decision{Outcome: Challenge, Reason: ReasonMalformed, HadCookie: true}
	}
}

// Middleware enforces Decide on every request. Challenged requests get a
// 401, have a presented cookie cleared, and never reach later handlers.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		d := a.Decide(c.Request)
		metrics.GateDecisions.WithLabelValues(d.Outcome.String(), string(d.Reason)).Inc()
		if d.Outcome == Pass {
			c.Next()
			return
		}

		system.GetReqLogger(c, a.log).Debugw("Session gate challenge", "reason", d.Reason, "hadCookie", d.HadCookie)
		actor, rc := audit.FromRequest(c.Request, c.ClientIP())
		a.audit.AccessChallenged(c.Request.Context(), actor, rc, string(d.Reason), d.HadCookie)

		if d.HadCookie {
			a.cookie.Clear(c.Writer)
		}
		apiresponses.RespondAuthenticationRequired(c)
		c.Abort()
	}
}

// checkPassword compares fixed-size digests so the comparison time does not
// depend on the length or content of the submitted password.
func (a *Authenticator) checkPassword(password string) bool {
	got := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(got[:], a.passwordDigest[:]) == 1
}
