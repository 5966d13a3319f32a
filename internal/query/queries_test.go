package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/binding"
	"github.com/caffeinepub/insurance-inquiry/internal/cache"
	"github.com/caffeinepub/insurance-inquiry/internal/errs"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/remote/remotetest"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// harness wires session + binding + cache + queries over one shared fake.
type harness struct {
	fake *remotetest.Fake
	sess *session.Manager
	q    *Queries
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := remotetest.New()
	sess := session.NewManager(remotetest.NewProvider("alice"))
	factory := func(*model.Capability) (remote.Client, error) { return fake, nil }
	bind, err := binding.New(factory, sess, zap.NewNop())
	require.NoError(t, err)
	q := New(sess, bind, cache.NewStore(), zap.NewNop())
	return &harness{fake: fake, sess: sess, q: q}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.sess.Login(context.Background())
	require.NoError(t, err)
}

func TestQueries_GuestCanReadPlansAndAgents(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.fake.Plans = []model.InsurancePlan{{PlanID: "P1", Name: "Basic Auto", InsuranceType: model.TypeAuto}}
	h.fake.Agents = []model.Agent{{AgentID: "A1", Name: "Dana"}}

	plans, err := h.q.AllPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)

	agents, err := h.q.Agents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	// second read comes from cache
	_, err = h.q.AllPlans(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.fake.Calls("GetAllInsurancePlans"))
}

func TestQueries_GuestGetsNeutralDefaultsWithoutCalls(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	view, err := h.q.CallerProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, ProfileUnknown, view.Status)

	isAdmin, err := h.q.IsCallerAdmin(ctx)
	require.NoError(t, err)
	require.False(t, isAdmin)

	mine, err := h.q.MyInquiries(ctx)
	require.NoError(t, err)
	require.Nil(t, mine)

	msgs, err := h.q.ContactMessages(ctx)
	require.NoError(t, err)
	require.Nil(t, msgs)

	require.Equal(t, 0, h.fake.Calls("GetCallerUserProfile"))
	require.Equal(t, 0, h.fake.Calls("IsCallerAdmin"))
	require.Equal(t, 0, h.fake.Calls("GetMyInsuranceInquiries"))
	require.Equal(t, 0, h.fake.Calls("GetAllContactMessages"))
}

func TestQueries_ProfileAbsentThenPresentAfterSave(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	view, err := h.q.CallerProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, ProfileAbsent, view.Status)

	p := model.UserProfile{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, h.q.SaveProfile(ctx, p))

	view, err = h.q.CallerProfile(ctx)
	require.NoError(t, err)
	require.Equal(t, ProfilePresent, view.Status)
	require.Equal(t, p, view.Profile)
	require.Equal(t, 2, h.fake.Calls("GetCallerUserProfile"))
}

func TestQueries_SubmitInquiryInvalidatesInquiryListsOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	_, err := h.q.MyInquiries(ctx)
	require.NoError(t, err)
	_, err = h.q.AllInquiries(ctx)
	require.NoError(t, err)
	_, err = h.q.Agents(ctx)
	require.NoError(t, err)

	id, err := h.q.SubmitInquiry(ctx, model.TypeAuto, "need coverage")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	mine, err := h.q.MyInquiries(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, id, mine[0].InquiryID)
	require.Equal(t, model.StatusPending, mine[0].Status)

	all, err := h.q.AllInquiries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = h.q.Agents(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, h.fake.Calls("GetMyInsuranceInquiries"))
	require.Equal(t, 2, h.fake.Calls("GetAllInsuranceInquiries"))
	require.Equal(t, 1, h.fake.Calls("GetAllAgents"))
}

func TestQueries_UpdateStatusVisibleOnNextRead(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	id, err := h.q.SubmitInquiry(ctx, model.TypeHome, "flood damage")
	require.NoError(t, err)

	all, err := h.q.AllInquiries(ctx)
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, all[0].Status)

	require.NoError(t, h.q.UpdateInquiryStatus(ctx, id, model.StatusInReview))

	all, err = h.q.AllInquiries(ctx)
	require.NoError(t, err)
	require.Equal(t, model.StatusInReview, all[0].Status)
}

func TestQueries_ValidationFailsBeforeAnyCall(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	_, err := h.q.SubmitInquiry(ctx, "boat", "details")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.q.SubmitInquiry(ctx, model.TypeAuto, "")
	require.ErrorIs(t, err, errs.ErrValidation)

	err = h.q.SaveProfile(ctx, model.UserProfile{Name: "Alice", Email: "not-an-email"})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.q.SendMessage(ctx, "", "hello")
	require.ErrorIs(t, err, errs.ErrValidation)

	err = h.q.UpdateInquiryStatus(ctx, "INQ-1", "archived")
	require.ErrorIs(t, err, errs.ErrValidation)

	require.Equal(t, 0, h.fake.Calls("SubmitInsuranceInquiry"))
	require.Equal(t, 0, h.fake.Calls("SaveCallerUserProfile"))
	require.Equal(t, 0, h.fake.Calls("SendMessageToAgent"))
	require.Equal(t, 0, h.fake.Calls("UpdateInquiryStatus"))
}

func TestQueries_FailedMutationLeavesCacheUntouched(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	_, err := h.q.MyInquiries(ctx)
	require.NoError(t, err)

	h.fake.Errs["SubmitInsuranceInquiry"] = errors.New("backend down")
	_, err = h.q.SubmitInquiry(ctx, model.TypeAuto, "details")
	require.Error(t, err)

	// no invalidation happened, the cached list is still served
	_, err = h.q.MyInquiries(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.fake.Calls("GetMyInsuranceInquiries"))
}

func TestQueries_PlansByTypeEmptyAndInvalid(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	plans, err := h.q.PlansByType(ctx, "")
	require.NoError(t, err)
	require.Nil(t, plans)

	_, err = h.q.PlansByType(ctx, "boat")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, 0, h.fake.Calls("GetInsurancePlansByType"))
}

func TestQueries_PlanVariantsInvalidateTogether(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)
	h.fake.Plans = []model.InsurancePlan{{PlanID: "P1", Name: "Basic", InsuranceType: model.TypeAuto}}

	_, err := h.q.AllPlans(ctx)
	require.NoError(t, err)
	_, err = h.q.PlansByType(ctx, model.TypeAuto)
	require.NoError(t, err)

	plan := model.InsurancePlan{PlanID: "P2", Name: "Premium", InsuranceType: model.TypeAuto}
	require.NoError(t, h.q.AddPlan(ctx, plan))

	all, err := h.q.AllPlans(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	auto, err := h.q.PlansByType(ctx, model.TypeAuto)
	require.NoError(t, err)
	require.Len(t, auto, 2)
}

func TestQueries_ReloginDiscardsPriorIdentityData(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)
	h.fake.Admin = true

	isAdmin, err := h.q.IsCallerAdmin(ctx)
	require.NoError(t, err)
	require.True(t, isAdmin)

	h.sess.Clear(ctx)
	h.fake.Admin = false
	h.login(t)

	// nothing resolved under the old identity survives
	_, resolved := h.q.PeekCallerAdmin()
	require.False(t, resolved)

	isAdmin, err = h.q.IsCallerAdmin(ctx)
	require.NoError(t, err)
	require.False(t, isAdmin)
	require.Equal(t, 2, h.fake.Calls("IsCallerAdmin"))
}

func TestQueries_SendMessageInvalidatesMessages(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	msgs, err := h.q.ContactMessages(ctx)
	require.NoError(t, err)
	require.Empty(t, msgs)

	id, err := h.q.SendMessage(ctx, "A1", "please call me back")
	require.NoError(t, err)

	msgs, err = h.q.ContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, id, msgs[0].MessageID)

	forAgent, err := h.q.ContactMessagesForAgent(ctx, "A1")
	require.NoError(t, err)
	require.Len(t, forAgent, 1)
}

func TestQueries_AssignRoleInvalidatesAdminCheck(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.login(t)

	_, err := h.q.IsCallerAdmin(ctx)
	require.NoError(t, err)
	_, resolved := h.q.PeekCallerAdmin()
	require.True(t, resolved)

	require.NoError(t, h.q.AssignRole(ctx, "bob", model.RoleAdmin))

	_, resolved = h.q.PeekCallerAdmin()
	require.False(t, resolved)
}
