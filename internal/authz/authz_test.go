package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/binding"
	"github.com/caffeinepub/insurance-inquiry/internal/cache"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/query"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/remote/remotetest"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

func newHarness(t *testing.T) (*remotetest.Fake, *session.Manager, *Deriver, *Guard) {
	t.Helper()
	fake := remotetest.New()
	sess := session.NewManager(remotetest.NewProvider("alice"))
	factory := func(*model.Capability) (remote.Client, error) { return fake, nil }
	bind, err := binding.New(factory, sess, zap.NewNop())
	require.NoError(t, err)
	q := query.New(sess, bind, cache.NewStore(), zap.NewNop())
	d := NewDeriver(sess, q)
	return fake, sess, d, NewGuard(d)
}

func TestDeriver_GuestResolvesImmediately(t *testing.T) {
	t.Parallel()
	_, _, d, _ := newHarness(t)

	st := d.Peek()
	require.True(t, st.Resolved)
	require.Equal(t, model.RoleGuest, st.Role)

	role, err := d.Resolve(context.Background())
	require.NoError(t, err)
	require.Equal(t, model.RoleGuest, role)
}

func TestDeriver_AuthenticatedUnresolvedUntilAdminCheck(t *testing.T) {
	t.Parallel()
	fake, sess, d, _ := newHarness(t)
	ctx := context.Background()
	fake.Admin = true

	_, err := sess.Login(ctx)
	require.NoError(t, err)

	// never admin, never user, until the check completes
	st := d.Peek()
	require.False(t, st.Resolved)

	role, err := d.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, role)

	st = d.Peek()
	require.True(t, st.Resolved)
	require.Equal(t, model.RoleAdmin, st.Role)
}

func TestDeriver_NonAdminResolvesToUser(t *testing.T) {
	t.Parallel()
	_, sess, d, _ := newHarness(t)
	ctx := context.Background()

	_, err := sess.Login(ctx)
	require.NoError(t, err)

	role, err := d.Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, role)
}

func TestGuard_GuestGetsLoginRequired(t *testing.T) {
	t.Parallel()
	_, _, _, g := newHarness(t)

	require.Equal(t, DecisionLoginRequired, g.Peek())
	require.Equal(t, DecisionLoginRequired, g.Check(context.Background()))
}

func TestGuard_PendingWhileUnresolved(t *testing.T) {
	t.Parallel()
	fake, sess, _, g := newHarness(t)
	ctx := context.Background()

	_, err := sess.Login(ctx)
	require.NoError(t, err)

	require.Equal(t, DecisionPending, g.Peek())

	// a failing admin check keeps the guard pending, never granted
	fake.Errs["IsCallerAdmin"] = errors.New("backend down")
	require.Equal(t, DecisionPending, g.Check(ctx))
}

func TestGuard_GrantsAdminDeniesUser(t *testing.T) {
	t.Parallel()
	fake, sess, _, g := newHarness(t)
	ctx := context.Background()

	_, err := sess.Login(ctx)
	require.NoError(t, err)

	require.Equal(t, DecisionDenied, g.Check(ctx))

	sess.Clear(ctx)
	fake.Admin = true
	_, err = sess.Login(ctx)
	require.NoError(t, err)

	require.Equal(t, DecisionGranted, g.Check(ctx))
	require.Equal(t, DecisionGranted, g.Peek())
}

func TestGuard_RevokedAdminDeniedAfterRecheck(t *testing.T) {
	t.Parallel()
	fake, sess, _, g := newHarness(t)
	ctx := context.Background()
	fake.Admin = true

	_, err := sess.Login(ctx)
	require.NoError(t, err)
	require.Equal(t, DecisionGranted, g.Check(ctx))

	// role revoked server-side; the cached check still grants until the
	// capability changes
	fake.Admin = false
	require.Equal(t, DecisionGranted, g.Check(ctx))

	sess.Clear(ctx)
	_, err = sess.Login(ctx)
	require.NoError(t, err)
	require.Equal(t, DecisionDenied, g.Check(ctx))
}
