// Package inquiry models the inquiry lifecycle as seen by the client: it
// records transition intents, exposes composable filtered views, and
// derives aggregate counts from the cached collection.
package inquiry

import (
	"context"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/query"
)

// Controller drives inquiry reads and admin transitions. The backend's
// transition policy is authoritative; the controller validates only that
// the target status is a known value.
type Controller struct {
	q *query.Queries
}

// New wires the controller.
func New(q *query.Queries) *Controller { return &Controller{q: q} }

// Submit files a new inquiry for the caller and returns its id.
func (c *Controller) Submit(ctx context.Context, t model.InsuranceType, details string) (string, error) {
	return c.q.SubmitInquiry(ctx, t, details)
}

// Mine lists the caller's own inquiries.
func (c *Controller) Mine(ctx context.Context) ([]model.InsuranceInquiry, error) {
	return c.q.MyInquiries(ctx)
}

// All lists every inquiry (admin surface).
func (c *Controller) All(ctx context.Context) ([]model.InsuranceInquiry, error) {
	return c.q.AllInquiries(ctx)
}

// UpdateStatus records an admin transition intent. On success the cached
// inquiry lists are invalidated, so the next read shows the new status.
func (c *Controller) UpdateStatus(ctx context.Context, inquiryID string, target model.InquiryStatus) error {
	return c.q.UpdateInquiryStatus(ctx, inquiryID, target)
}

// Counts derives the aggregate per-status counts from the current
// collection. Always recomputed, never cached independently.
func (c *Controller) Counts(ctx context.Context) (model.InquiryCounts, error) {
	all, err := c.All(ctx)
	if err != nil {
		return model.InquiryCounts{}, err
	}
	return Count(all), nil
}

// Filtered applies a filter to the current collection (admin surface).
func (c *Controller) Filtered(ctx context.Context, f Filter) ([]model.InsuranceInquiry, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

// Filter narrows an inquiry collection. Type and status compose with
// logical AND; nil fields match everything.
type Filter struct {
	Type   *model.InsuranceType
	Status *model.InquiryStatus
}

// Apply returns the matching inquiries without mutating the input.
func (f Filter) Apply(list []model.InsuranceInquiry) []model.InsuranceInquiry {
	out := make([]model.InsuranceInquiry, 0, len(list))
	for _, inq := range list {
		if f.Type != nil && inq.InsuranceType != *f.Type {
			continue
		}
		if f.Status != nil && inq.Status != *f.Status {
			continue
		}
		out = append(out, inq)
	}
	return out
}

// Count buckets a collection by status. Counts always sum to the input
// length: every inquiry carries one of the three known statuses.
func Count(list []model.InsuranceInquiry) model.InquiryCounts {
	var c model.InquiryCounts
	for _, inq := range list {
		switch inq.Status {
		case model.StatusPending:
			c.Pending++
		case model.StatusInReview:
			c.InReview++
		case model.StatusResolved:
			c.Resolved++
		}
	}
	return c
}
