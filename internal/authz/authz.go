// Package authz derives the effective role from the capability and the
// remote admin check, and gates the administrative surface.
package authz

import (
	"context"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/query"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// RoleState is the derived role with an explicit unresolved variant, so an
// in-flight admin check is never mistaken for either admin or plain user.
type RoleState struct {
	Resolved bool
	Role     model.Role
}

// Deriver combines the session capability with the cached admin check.
type Deriver struct {
	sess *session.Manager
	q    *query.Queries
}

// NewDeriver wires the role combinator.
func NewDeriver(sess *session.Manager, q *query.Queries) *Deriver {
	return &Deriver{sess: sess, q: q}
}

// Peek derives the role from already-resolved inputs only. Guests resolve
// immediately; authenticated callers stay unresolved until the admin check
// has completed at least once for the current capability.
func (d *Deriver) Peek() RoleState {
	if _, ok := d.sess.Capability(); !ok {
		return RoleState{Resolved: true, Role: model.RoleGuest}
	}
	isAdmin, resolved := d.q.PeekCallerAdmin()
	if !resolved {
		return RoleState{}
	}
	if isAdmin {
		return RoleState{Resolved: true, Role: model.RoleAdmin}
	}
	return RoleState{Resolved: true, Role: model.RoleUser}
}

// Resolve forces the admin check and returns a concrete role.
func (d *Deriver) Resolve(ctx context.Context) (model.Role, error) {
	if _, ok := d.sess.Capability(); !ok {
		return model.RoleGuest, nil
	}
	isAdmin, err := d.q.IsCallerAdmin(ctx)
	if err != nil {
		return "", err
	}
	if isAdmin {
		return model.RoleAdmin, nil
	}
	return model.RoleUser, nil
}

// Decision is the route guard outcome for the admin surface.
type Decision int

const (
	// DecisionLoginRequired blocks access and prompts for login.
	DecisionLoginRequired Decision = iota
	// DecisionPending blocks access while the role is unresolved; render a
	// loading state, never the protected content.
	DecisionPending
	// DecisionDenied blocks access for confirmed non-admins.
	DecisionDenied
	// DecisionGranted renders the protected content.
	DecisionGranted
)

// Guard protects the administrative surface. The three blocking states are
// mutually exclusive with Granted; protected content never shows before the
// role resolves.
type Guard struct {
	d *Deriver
}

// NewGuard wires the route guard.
func NewGuard(d *Deriver) *Guard { return &Guard{d: d} }

// Check resolves the guard decision, forcing the admin check if needed. A
// failing admin check leaves the role unresolved and the guard pending.
func (g *Guard) Check(ctx context.Context) Decision {
	if _, ok := g.d.sess.Capability(); !ok {
		return DecisionLoginRequired
	}
	role, err := g.d.Resolve(ctx)
	if err != nil {
		return DecisionPending
	}
	if role == model.RoleAdmin {
		return DecisionGranted
	}
	return DecisionDenied
}

// Peek derives the decision from resolved inputs only.
func (g *Guard) Peek() Decision {
	if _, ok := g.d.sess.Capability(); !ok {
		return DecisionLoginRequired
	}
	st := g.d.Peek()
	if !st.Resolved {
		return DecisionPending
	}
	if st.Role == model.RoleAdmin {
		return DecisionGranted
	}
	return DecisionDenied
}
