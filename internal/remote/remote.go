// Package remote defines the contract exposed by the insurance backend.
// The backend itself is an external collaborator; only the method shapes
// and error behavior matter to this client.
package remote

import (
	"context"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
)

// Client is a call-capable handle bound to one caller identity. Handles are
// produced by the remote binding and must never outlive the capability they
// were built for.
type Client interface {
	// GetCallerUserProfile returns the caller's profile, or None if the
	// caller has not completed profile setup yet.
	GetCallerUserProfile(ctx context.Context) (Maybe[model.UserProfile], error)
	// SaveCallerUserProfile creates or replaces the caller's profile.
	SaveCallerUserProfile(ctx context.Context, p model.UserProfile) error
	// IsCallerAdmin reports whether the caller holds the admin role.
	IsCallerAdmin(ctx context.Context) (bool, error)

	// GetAllInsurancePlans lists every plan; readable by guests.
	GetAllInsurancePlans(ctx context.Context) ([]model.InsurancePlan, error)
	// GetInsurancePlansByType lists plans for one line of coverage.
	GetInsurancePlansByType(ctx context.Context, t model.InsuranceType) ([]model.InsurancePlan, error)
	// AddInsurancePlan registers a new plan (admin).
	AddInsurancePlan(ctx context.Context, p model.InsurancePlan) error

	// SubmitInsuranceInquiry files a new inquiry and returns its id.
	SubmitInsuranceInquiry(ctx context.Context, t model.InsuranceType, details string) (string, error)
	// GetMyInsuranceInquiries lists the caller's own inquiries.
	GetMyInsuranceInquiries(ctx context.Context) ([]model.InsuranceInquiry, error)
	// GetAllInsuranceInquiries lists every inquiry (admin).
	GetAllInsuranceInquiries(ctx context.Context) ([]model.InsuranceInquiry, error)
	// GetInsuranceInquiriesByType lists inquiries for one line of coverage (admin).
	GetInsuranceInquiriesByType(ctx context.Context, t model.InsuranceType) ([]model.InsuranceInquiry, error)
	// UpdateInquiryStatus moves an inquiry to the target status (admin).
	UpdateInquiryStatus(ctx context.Context, inquiryID string, status model.InquiryStatus) error

	// GetAllAgents lists every contactable agent.
	GetAllAgents(ctx context.Context) ([]model.Agent, error)
	// AddAgent registers a new agent (admin).
	AddAgent(ctx context.Context, a model.Agent) error
	// SendMessageToAgent delivers a message and returns its id.
	SendMessageToAgent(ctx context.Context, agentID, message string) (string, error)
	// GetAllContactMessages lists every message (admin).
	GetAllContactMessages(ctx context.Context) ([]model.ContactMessage, error)
	// GetContactMessagesForAgent lists messages addressed to one agent (admin).
	GetContactMessagesForAgent(ctx context.Context, agentID string) ([]model.ContactMessage, error)

	// AssignCallerUserRole grants a role to a principal (admin).
	AssignCallerUserRole(ctx context.Context, principal string, role model.Role) error

	// Close releases the underlying connection.
	Close() error
}
