// Package model defines domain entities exchanged with the insurance backend.
package model

import (
	"fmt"
	"time"
)

// InsuranceType is the line of coverage an inquiry or plan relates to.
type InsuranceType string

const (
	TypeAuto   InsuranceType = "auto"
	TypeHome   InsuranceType = "home"
	TypeLife   InsuranceType = "life"
	TypeHealth InsuranceType = "health"
)

// InsuranceTypes lists every known type in display order.
var InsuranceTypes = []InsuranceType{TypeAuto, TypeHome, TypeLife, TypeHealth}

// ParseInsuranceType validates a wire string.
func ParseInsuranceType(s string) (InsuranceType, error) {
	switch t := InsuranceType(s); t {
	case TypeAuto, TypeHome, TypeLife, TypeHealth:
		return t, nil
	}
	return "", fmt.Errorf("unknown insurance type %q", s)
}

// InquiryStatus is the triage state of a submitted inquiry.
type InquiryStatus string

const (
	StatusPending  InquiryStatus = "pending"
	StatusInReview InquiryStatus = "inReview"
	StatusResolved InquiryStatus = "resolved"
)

// ParseInquiryStatus validates a wire string.
func ParseInquiryStatus(s string) (InquiryStatus, error) {
	switch st := InquiryStatus(s); st {
	case StatusPending, StatusInReview, StatusResolved:
		return st, nil
	}
	return "", fmt.Errorf("unknown inquiry status %q", s)
}

// Role is the effective authorization level of the caller.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole validates a wire string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleGuest, RoleUser, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Capability is the proof of caller identity issued by the identity
// provider. At most one capability is active per session; a nil *Capability
// means guest.
type Capability struct {
	Principal   string
	AccessToken string
	ExpiresAt   time.Time
}

// UserProfile is the caller's self-declared identity. Exactly one per
// principal; absence means profile setup is still required.
type UserProfile struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// InsurancePlan is a publicly listed coverage product.
type InsurancePlan struct {
	PlanID         string        `json:"planId"`
	Name           string        `json:"name"`
	InsuranceType  InsuranceType `json:"insuranceType"`
	Premium        int64         `json:"premium"`
	CoverageAmount int64         `json:"coverageAmount"`
	Features       []string      `json:"features"`
}

// InsuranceInquiry is a customer's request for coverage. The owner is fixed
// at creation; only admins mutate the status afterwards.
type InsuranceInquiry struct {
	InquiryID     string        `json:"inquiryId"`
	InsuranceType InsuranceType `json:"insuranceType"`
	Status        InquiryStatus `json:"status"`
	User          string        `json:"user"`
	Details       string        `json:"details"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Agent is a contactable specialist, managed by the backend and read-only
// to this client.
type Agent struct {
	AgentID        string          `json:"agentId"`
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	Specialization []InsuranceType `json:"specialization"`
}

// ContactMessage is a message sent to a named agent, immutable once sent.
type ContactMessage struct {
	MessageID string    `json:"messageId"`
	AgentID   string    `json:"agentId"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// InquiryCounts aggregates an inquiry collection by status.
type InquiryCounts struct {
	Pending  int
	InReview int
	Resolved int
}

// Total sums all buckets.
func (c InquiryCounts) Total() int { return c.Pending + c.InReview + c.Resolved }
