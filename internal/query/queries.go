// Package query wraps every remote read behind a keyed cache entry and
// every remote write behind a mutation that declares which keys it
// invalidates. Reads degrade to neutral defaults while the binding is not
// ready; mutations never retry and leave the cache untouched on failure.
package query

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/caffeinepub/insurance-inquiry/internal/binding"
	"github.com/caffeinepub/insurance-inquiry/internal/cache"
	"github.com/caffeinepub/insurance-inquiry/internal/errs"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
	"github.com/caffeinepub/insurance-inquiry/internal/session"
)

// ProfileStatus distinguishes "still unknown" from "confirmed absent"; the
// profile completion gate depends on the difference.
type ProfileStatus int

const (
	ProfileUnknown ProfileStatus = iota
	ProfileAbsent
	ProfilePresent
)

// ProfileView is the result of a caller-profile read.
type ProfileView struct {
	Status  ProfileStatus
	Profile model.UserProfile
}

// Queries is the typed read/write surface over binding + cache.
type Queries struct {
	sess     *session.Manager
	bind     *binding.Binding
	store    *cache.Store
	validate *validator.Validate
	log      *zap.Logger
}

// New wires the query layer. The store is reset on every capability change
// so no data fetched under a prior identity survives a re-login.
func New(sess *session.Manager, bind *binding.Binding, store *cache.Store, log *zap.Logger) *Queries {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queries{
		sess:     sess,
		bind:     bind,
		store:    store,
		validate: validator.New(),
		log:      log,
	}
	sess.OnChange(func(*model.Capability) { store.Reset() })
	return q
}

// cached runs one keyed, deduplicated fetch through the store. served is
// false when the binding was not ready and the neutral default was returned
// without a call.
func cached[T any](ctx context.Context, q *Queries, k cache.Key, fetch func(ctx context.Context, c remote.Client) (T, error)) (v T, served bool, err error) {
	var zero T
	c, ok := q.bind.Client()
	if !ok {
		return zero, false, nil
	}
	got, err := q.store.Do(ctx, k, func(ctx context.Context) (any, error) {
		return fetch(ctx, c)
	})
	if err != nil {
		return zero, true, err
	}
	return got.(T), true, nil
}

// client returns the handle for a mutation, or ErrNotReady.
func (q *Queries) client() (remote.Client, error) {
	c, ok := q.bind.Client()
	if !ok {
		return nil, errs.ErrNotReady
	}
	return c, nil
}

// authenticated reports whether a capability is active.
func (q *Queries) authenticated() bool {
	_, ok := q.sess.Capability()
	return ok
}

// --- Reads ---

// CallerProfile returns the caller's profile view. Guests and a not-ready
// binding yield ProfileUnknown without erroring.
func (q *Queries) CallerProfile(ctx context.Context) (ProfileView, error) {
	if !q.authenticated() {
		return ProfileView{Status: ProfileUnknown}, nil
	}
	m, served, err := cached(ctx, q, key(OpCallerProfile), func(ctx context.Context, c remote.Client) (remote.Maybe[model.UserProfile], error) {
		return c.GetCallerUserProfile(ctx)
	})
	if err != nil {
		return ProfileView{Status: ProfileUnknown}, err
	}
	if !served {
		return ProfileView{Status: ProfileUnknown}, nil
	}
	if p, ok := m.Get(); ok {
		return ProfileView{Status: ProfilePresent, Profile: p}, nil
	}
	return ProfileView{Status: ProfileAbsent}, nil
}

// IsCallerAdmin resolves the cached admin check. Guests are never admin and
// no call is made for them.
func (q *Queries) IsCallerAdmin(ctx context.Context) (bool, error) {
	if !q.authenticated() {
		return false, nil
	}
	isAdmin, _, err := cached(ctx, q, key(OpIsCallerAdmin), func(ctx context.Context, c remote.Client) (bool, error) {
		return c.IsCallerAdmin(ctx)
	})
	return isAdmin, err
}

// PeekCallerAdmin returns the admin check result only if already resolved.
func (q *Queries) PeekCallerAdmin() (isAdmin, resolved bool) {
	v, ok := q.store.Peek(key(OpIsCallerAdmin))
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// AllPlans lists every insurance plan; readable by guests.
func (q *Queries) AllPlans(ctx context.Context) ([]model.InsurancePlan, error) {
	plans, _, err := cached(ctx, q, key(OpPlans), func(ctx context.Context, c remote.Client) ([]model.InsurancePlan, error) {
		return c.GetAllInsurancePlans(ctx)
	})
	return plans, err
}

// PlansByType lists plans for one coverage line; an empty type returns the
// neutral default (the parameter precondition is unmet, not an error).
func (q *Queries) PlansByType(ctx context.Context, t model.InsuranceType) ([]model.InsurancePlan, error) {
	if t == "" {
		return nil, nil
	}
	if _, err := model.ParseInsuranceType(string(t)); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	plans, _, err := cached(ctx, q, keyArg(OpPlans, string(t)), func(ctx context.Context, c remote.Client) ([]model.InsurancePlan, error) {
		return c.GetInsurancePlansByType(ctx, t)
	})
	return plans, err
}

// MyInquiries lists the caller's inquiries; guests get the neutral default.
func (q *Queries) MyInquiries(ctx context.Context) ([]model.InsuranceInquiry, error) {
	if !q.authenticated() {
		return nil, nil
	}
	inqs, _, err := cached(ctx, q, key(OpMyInquiries), func(ctx context.Context, c remote.Client) ([]model.InsuranceInquiry, error) {
		return c.GetMyInsuranceInquiries(ctx)
	})
	return inqs, err
}

// AllInquiries lists every inquiry (admin surface).
func (q *Queries) AllInquiries(ctx context.Context) ([]model.InsuranceInquiry, error) {
	if !q.authenticated() {
		return nil, nil
	}
	inqs, _, err := cached(ctx, q, key(OpAllInquiries), func(ctx context.Context, c remote.Client) ([]model.InsuranceInquiry, error) {
		return c.GetAllInsuranceInquiries(ctx)
	})
	return inqs, err
}

// InquiriesByType lists inquiries for one coverage line (admin surface).
func (q *Queries) InquiriesByType(ctx context.Context, t model.InsuranceType) ([]model.InsuranceInquiry, error) {
	if !q.authenticated() || t == "" {
		return nil, nil
	}
	if _, err := model.ParseInsuranceType(string(t)); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	inqs, _, err := cached(ctx, q, keyArg(OpAllInquiries, "byType/"+string(t)), func(ctx context.Context, c remote.Client) ([]model.InsuranceInquiry, error) {
		return c.GetInsuranceInquiriesByType(ctx, t)
	})
	return inqs, err
}

// Agents lists every contactable agent.
func (q *Queries) Agents(ctx context.Context) ([]model.Agent, error) {
	agents, _, err := cached(ctx, q, key(OpAgents), func(ctx context.Context, c remote.Client) ([]model.Agent, error) {
		return c.GetAllAgents(ctx)
	})
	return agents, err
}

// ContactMessages lists every message (admin surface).
func (q *Queries) ContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	if !q.authenticated() {
		return nil, nil
	}
	msgs, _, err := cached(ctx, q, key(OpContactMessages), func(ctx context.Context, c remote.Client) ([]model.ContactMessage, error) {
		return c.GetAllContactMessages(ctx)
	})
	return msgs, err
}

// ContactMessagesForAgent lists messages addressed to one agent.
func (q *Queries) ContactMessagesForAgent(ctx context.Context, agentID string) ([]model.ContactMessage, error) {
	if !q.authenticated() || agentID == "" {
		return nil, nil
	}
	msgs, _, err := cached(ctx, q, keyArg(OpContactMessages, agentID), func(ctx context.Context, c remote.Client) ([]model.ContactMessage, error) {
		return c.GetContactMessagesForAgent(ctx, agentID)
	})
	return msgs, err
}

// --- Mutations ---

// finish applies the declared invalidations after a successful mutation.
// The success path runs to completion before any subsequent read can
// observe the stale keys.
func (q *Queries) finish(m Mutation) {
	ops := m.Invalidates()
	q.store.Invalidate(ops...)
	q.log.Debug("mutation applied", zap.Int("mutation", int(m)), zap.Strings("invalidates", ops))
}

// SaveProfile creates or replaces the caller's profile.
func (q *Queries) SaveProfile(ctx context.Context, p model.UserProfile) error {
	if err := q.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	c, err := q.client()
	if err != nil {
		return err
	}
	if err := c.SaveCallerUserProfile(ctx, p); err != nil {
		return err
	}
	q.finish(MutationSaveProfile)
	return nil
}

// SubmitInquiry files a new inquiry and returns its id.
func (q *Queries) SubmitInquiry(ctx context.Context, t model.InsuranceType, details string) (string, error) {
	if _, err := model.ParseInsuranceType(string(t)); err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	if details == "" {
		return "", fmt.Errorf("%w: empty details", errs.ErrValidation)
	}
	c, err := q.client()
	if err != nil {
		return "", err
	}
	id, err := c.SubmitInsuranceInquiry(ctx, t, details)
	if err != nil {
		return "", err
	}
	q.finish(MutationSubmitInquiry)
	return id, nil
}

// UpdateInquiryStatus records the admin's transition intent; the backend's
// transition policy is authoritative.
func (q *Queries) UpdateInquiryStatus(ctx context.Context, inquiryID string, st model.InquiryStatus) error {
	if inquiryID == "" {
		return fmt.Errorf("%w: empty inquiry id", errs.ErrValidation)
	}
	if _, err := model.ParseInquiryStatus(string(st)); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	c, err := q.client()
	if err != nil {
		return err
	}
	if err := c.UpdateInquiryStatus(ctx, inquiryID, st); err != nil {
		return err
	}
	q.finish(MutationUpdateInquiryStatus)
	return nil
}

// SendMessage delivers a message to a named agent and returns its id.
func (q *Queries) SendMessage(ctx context.Context, agentID, message string) (string, error) {
	if agentID == "" {
		return "", fmt.Errorf("%w: no agent selected", errs.ErrValidation)
	}
	if message == "" {
		return "", fmt.Errorf("%w: empty message", errs.ErrValidation)
	}
	c, err := q.client()
	if err != nil {
		return "", err
	}
	id, err := c.SendMessageToAgent(ctx, agentID, message)
	if err != nil {
		return "", err
	}
	q.finish(MutationSendMessage)
	return id, nil
}

// AddAgent registers a new agent (admin).
func (q *Queries) AddAgent(ctx context.Context, a model.Agent) error {
	if a.AgentID == "" || a.Name == "" {
		return fmt.Errorf("%w: agent id/name required", errs.ErrValidation)
	}
	for _, t := range a.Specialization {
		if _, err := model.ParseInsuranceType(string(t)); err != nil {
			return fmt.Errorf("%w: %w", errs.ErrValidation, err)
		}
	}
	c, err := q.client()
	if err != nil {
		return err
	}
	if err := c.AddAgent(ctx, a); err != nil {
		return err
	}
	q.finish(MutationAddAgent)
	return nil
}

// AddPlan registers a new insurance plan (admin).
func (q *Queries) AddPlan(ctx context.Context, p model.InsurancePlan) error {
	if p.PlanID == "" || p.Name == "" {
		return fmt.Errorf("%w: plan id/name required", errs.ErrValidation)
	}
	if _, err := model.ParseInsuranceType(string(p.InsuranceType)); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	c, err := q.client()
	if err != nil {
		return err
	}
	if err := c.AddInsurancePlan(ctx, p); err != nil {
		return err
	}
	q.finish(MutationAddPlan)
	return nil
}

// AssignRole grants a role to a principal (admin).
func (q *Queries) AssignRole(ctx context.Context, principal string, role model.Role) error {
	if principal == "" {
		return fmt.Errorf("%w: empty principal", errs.ErrValidation)
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	c, err := q.client()
	if err != nil {
		return err
	}
	if err := c.AssignCallerUserRole(ctx, principal, role); err != nil {
		return err
	}
	q.finish(MutationAssignRole)
	return nil
}
