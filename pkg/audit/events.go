package audit

import "context"

const targetSession = "session"

// LoginSucceeded records a successful login.
func (m *Manager) LoginSucceeded(ctx context.Context, actor Actor, rc *RequestContext) {
	m.Emit(ctx, &Event{Type: EventLoginSucceeded, Actor: actor, Target: Target{Kind: targetSession}, RequestContext: rc})
}

// LoginFailed records a rejected login. reason never contains the password.
func (m *Manager) LoginFailed(ctx context.Context, actor Actor, rc *RequestContext, reason string) {
	m.Emit(ctx, &Event{
		Type:           EventLoginFailed,
		Actor:          actor,
		Target:         Target{Kind: targetSession},
		Details:        map[string]any{"reason": reason},
		RequestContext: rc,
	})
}

// LoginMisconfigured records a login attempted while no password is configured.
func (m *Manager) LoginMisconfigured(ctx context.Context, actor Actor, rc *RequestContext) {
	m.Emit(ctx, &Event{Type: EventLoginMisconfigured, Actor: actor, Target: Target{Kind: targetSession}, RequestContext: rc})
}

func (m *Manager) Logout(ctx context.Context, actor Actor, rc *RequestContext) {
	m.Emit(ctx, &Event{Type: EventLogout, Actor: actor, Target: Target{Kind: targetSession}, RequestContext: rc})
}

// AccessChallenged records a protected request turned away by the session gate.
func (m *Manager) AccessChallenged(ctx context.Context, actor Actor, rc *RequestContext, reason string, hadCookie bool) {
	m.Emit(ctx, &Event{
		Type:           EventAccessChallenged,
		Actor:          actor,
		Target:         Target{Kind: targetSession},
		Details:        map[string]any{"reason": reason, "hadCookie": hadCookie},
		RequestContext: rc,
	})
}

// RateLimited records a request rejected by the named limiter.
func (m *Manager) RateLimited(ctx context.Context, actor Actor, rc *RequestContext, limiter string, limit int) {
	m.Emit(ctx, &Event{
		Type:           EventRateLimited,
		Actor:          actor,
		Target:         Target{Kind: "ratelimit", Name: limiter},
		Details:        map[string]any{"limit": limit},
		RequestContext: rc,
	})
}

// ResourceChanged records a create, update or delete of an application,
// interview or skill.
func (m *Manager) ResourceChanged(ctx context.Context, eventType EventType, kind, id string, actor Actor, rc *RequestContext) {
	m.Emit(ctx, &Event{Type: eventType, Actor: actor, Target: Target{Kind: kind, Name: id}, RequestContext: rc})
}
