// Package remotetest provides an in-memory remote.Client for tests.
package remotetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
)

// Fake is a configurable in-memory backend. Mutations really mutate its
// state, so a re-fetch after invalidation observes post-mutation data.
type Fake struct {
	mu sync.Mutex

	Profile   *model.UserProfile
	Admin     bool
	Plans     []model.InsurancePlan
	Inquiries []model.InsuranceInquiry
	Mine      []model.InsuranceInquiry
	Agents    []model.Agent
	Messages  []model.ContactMessage

	Owner string // principal recorded on submitted inquiries

	Errs   map[string]error // per-method injected failures
	calls  map[string]int
	nextID int

	Closed bool
}

var _ remote.Client = (*Fake)(nil)

// New returns an empty fake.
func New() *Fake {
	return &Fake{Errs: map[string]error{}, calls: map[string]int{}, Owner: "principal-1"}
}

// Calls reports how many times a method ran.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) enter(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.Errs[method]
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

func (f *Fake) GetCallerUserProfile(context.Context) (remote.Maybe[model.UserProfile], error) {
	if err := f.enter("GetCallerUserProfile"); err != nil {
		return remote.None[model.UserProfile](), err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Profile == nil {
		return remote.None[model.UserProfile](), nil
	}
	return remote.Some(*f.Profile), nil
}

func (f *Fake) SaveCallerUserProfile(_ context.Context, p model.UserProfile) error {
	if err := f.enter("SaveCallerUserProfile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cpy := p
	f.Profile = &cpy
	return nil
}

func (f *Fake) IsCallerAdmin(context.Context) (bool, error) {
	if err := f.enter("IsCallerAdmin"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Admin, nil
}

func (f *Fake) GetAllInsurancePlans(context.Context) ([]model.InsurancePlan, error) {
	if err := f.enter("GetAllInsurancePlans"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.InsurancePlan(nil), f.Plans...), nil
}

func (f *Fake) GetInsurancePlansByType(_ context.Context, t model.InsuranceType) ([]model.InsurancePlan, error) {
	if err := f.enter("GetInsurancePlansByType"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InsurancePlan
	for _, p := range f.Plans {
		if p.InsuranceType == t {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) AddInsurancePlan(_ context.Context, p model.InsurancePlan) error {
	if err := f.enter("AddInsurancePlan"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Plans = append(f.Plans, p)
	return nil
}

func (f *Fake) SubmitInsuranceInquiry(_ context.Context, t model.InsuranceType, details string) (string, error) {
	if err := f.enter("SubmitInsuranceInquiry"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	inq := model.InsuranceInquiry{
		InquiryID:     fmt.Sprintf("INQ-%d", f.nextID),
		InsuranceType: t,
		Status:        model.StatusPending,
		User:          f.Owner,
		Details:       details,
		Timestamp:     time.Now(),
	}
	f.Inquiries = append(f.Inquiries, inq)
	f.Mine = append(f.Mine, inq)
	return inq.InquiryID, nil
}

func (f *Fake) GetMyInsuranceInquiries(context.Context) ([]model.InsuranceInquiry, error) {
	if err := f.enter("GetMyInsuranceInquiries"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.InsuranceInquiry(nil), f.Mine...), nil
}

func (f *Fake) GetAllInsuranceInquiries(context.Context) ([]model.InsuranceInquiry, error) {
	if err := f.enter("GetAllInsuranceInquiries"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.InsuranceInquiry(nil), f.Inquiries...), nil
}

func (f *Fake) GetInsuranceInquiriesByType(_ context.Context, t model.InsuranceType) ([]model.InsuranceInquiry, error) {
	if err := f.enter("GetInsuranceInquiriesByType"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InsuranceInquiry
	for _, inq := range f.Inquiries {
		if inq.InsuranceType == t {
			out = append(out, inq)
		}
	}
	return out, nil
}

func (f *Fake) UpdateInquiryStatus(_ context.Context, inquiryID string, st model.InquiryStatus) error {
	if err := f.enter("UpdateInquiryStatus"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.Inquiries {
		if f.Inquiries[i].InquiryID == inquiryID {
			f.Inquiries[i].Status = st
			return nil
		}
	}
	return fmt.Errorf("inquiry %s not found", inquiryID)
}

func (f *Fake) GetAllAgents(context.Context) ([]model.Agent, error) {
	if err := f.enter("GetAllAgents"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Agent(nil), f.Agents...), nil
}

func (f *Fake) AddAgent(_ context.Context, a model.Agent) error {
	if err := f.enter("AddAgent"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Agents = append(f.Agents, a)
	return nil
}

func (f *Fake) SendMessageToAgent(_ context.Context, agentID, message string) (string, error) {
	if err := f.enter("SendMessageToAgent"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg := model.ContactMessage{
		MessageID: fmt.Sprintf("MSG-%d", f.nextID),
		AgentID:   agentID,
		Sender:    f.Owner,
		Message:   message,
		Timestamp: time.Now(),
	}
	f.Messages = append(f.Messages, msg)
	return msg.MessageID, nil
}

func (f *Fake) GetAllContactMessages(context.Context) ([]model.ContactMessage, error) {
	if err := f.enter("GetAllContactMessages"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ContactMessage(nil), f.Messages...), nil
}

func (f *Fake) GetContactMessagesForAgent(_ context.Context, agentID string) ([]model.ContactMessage, error) {
	if err := f.enter("GetContactMessagesForAgent"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ContactMessage
	for _, m := range f.Messages {
		if m.AgentID == agentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *Fake) AssignCallerUserRole(_ context.Context, principal string, role model.Role) error {
	return f.enter("AssignCallerUserRole")
}

// Provider is an in-memory identity.Provider.
type Provider struct {
	mu sync.Mutex

	Principal string
	Token     string
	Err       error

	LoginCalls  int
	LogoutCalls int
}

// NewProvider returns a provider issuing capabilities for one principal.
func NewProvider(principal string) *Provider {
	return &Provider{Principal: principal, Token: "token-" + principal}
}

func (p *Provider) Login(context.Context) (model.Capability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LoginCalls++
	if p.Err != nil {
		return model.Capability{}, p.Err
	}
	return model.Capability{
		Principal:   p.Principal,
		AccessToken: p.Token,
		ExpiresAt:   time.Now().Add(15 * time.Minute),
	}, nil
}

func (p *Provider) Logout(context.Context, model.Capability) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.LogoutCalls++
	return nil
}
