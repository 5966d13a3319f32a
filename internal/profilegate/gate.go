// Package profilegate enforces the process-wide profile completion rule:
// an authenticated caller without a saved profile must create one before
// any other authenticated action proceeds.
package profilegate

import (
	"context"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/query"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// Gate evaluates the profile completion rule.
type Gate struct {
	sess *session.Manager
	q    *query.Queries
}

// New wires the gate.
func New(sess *session.Manager, q *query.Queries) *Gate {
	return &Gate{sess: sess, q: q}
}

// SetupRequired reports whether profile setup must be forced. It triggers
// only when a capability is present and the profile read completed with a
// confirmed absence: guests and unfinished reads never trip the gate.
func (g *Gate) SetupRequired(ctx context.Context) (bool, error) {
	if _, ok := g.sess.Capability(); !ok {
		return false, nil
	}
	view, err := g.q.CallerProfile(ctx)
	if err != nil {
		return false, err
	}
	return view.Status == query.ProfileAbsent, nil
}

// Complete saves the profile and reports whether the gate has released
// (the next profile read returns the saved record).
func (g *Gate) Complete(ctx context.Context, p model.UserProfile) error {
	return g.q.SaveProfile(ctx, p)
}
