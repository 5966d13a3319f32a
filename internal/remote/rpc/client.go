package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/caffeinepub/insurance-inquiry/internal/errs"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote"
)

// Client is the gRPC-backed implementation of remote.Client. One Client is
// bound to one bearer token for its whole lifetime; identity changes require
// a new Client.
type Client struct {
	cc *grpc.ClientConn
}

var _ remote.Client = (*Client)(nil)

// NewClient opens a handle to the gateway. An empty bearer yields an
// anonymous (guest) handle.
func NewClient(opts Options, bearer string) (*Client, error) {
	cc, err := dialConn(opts, bearer)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.cc.Close() }

// invoke performs one unary call and maps gRPC codes to sentinel errors.
func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	err := c.cc.Invoke(ctx, method, in, out)
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%s: %w", method, errs.ErrUnauthorized)
	case codes.NotFound:
		return fmt.Errorf("%s: %w", method, errs.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", method, err)
}

func (c *Client) GetCallerUserProfile(ctx context.Context) (remote.Maybe[model.UserProfile], error) {
	var out GetCallerUserProfileResponse
	if err := c.invoke(ctx, MethodGetCallerUserProfile, &Empty{}, &out); err != nil {
		return remote.None[model.UserProfile](), err
	}
	if out.Profile == nil {
		return remote.None[model.UserProfile](), nil
	}
	return remote.Some(*out.Profile), nil
}

func (c *Client) SaveCallerUserProfile(ctx context.Context, p model.UserProfile) error {
	return c.invoke(ctx, MethodSaveCallerUserProfile, &SaveCallerUserProfileRequest{Profile: p}, &Empty{})
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	var out IsCallerAdminResponse
	if err := c.invoke(ctx, MethodIsCallerAdmin, &Empty{}, &out); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

func (c *Client) GetAllInsurancePlans(ctx context.Context) ([]model.InsurancePlan, error) {
	var out PlansResponse
	if err := c.invoke(ctx, MethodGetAllInsurancePlans, &Empty{}, &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

func (c *Client) GetInsurancePlansByType(ctx context.Context, t model.InsuranceType) ([]model.InsurancePlan, error) {
	var out PlansResponse
	if err := c.invoke(ctx, MethodGetInsurancePlansByType, &PlansByTypeRequest{InsuranceType: t}, &out); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

func (c *Client) AddInsurancePlan(ctx context.Context, p model.InsurancePlan) error {
	return c.invoke(ctx, MethodAddInsurancePlan, &AddInsurancePlanRequest{Plan: p}, &Empty{})
}

func (c *Client) SubmitInsuranceInquiry(ctx context.Context, t model.InsuranceType, details string) (string, error) {
	var out SubmitInquiryResponse
	if err := c.invoke(ctx, MethodSubmitInsuranceInquiry, &SubmitInquiryRequest{InsuranceType: t, Details: details}, &out); err != nil {
		return "", err
	}
	return out.InquiryID, nil
}

func (c *Client) GetMyInsuranceInquiries(ctx context.Context) ([]model.InsuranceInquiry, error) {
	var out InquiriesResponse
	if err := c.invoke(ctx, MethodGetMyInsuranceInquiries, &Empty{}, &out); err != nil {
		return nil, err
	}
	return out.Inquiries, nil
}

func (c *Client) GetAllInsuranceInquiries(ctx context.Context) ([]model.InsuranceInquiry, error) {
	var out InquiriesResponse
	if err := c.invoke(ctx, MethodGetAllInsuranceInquiries, &Empty{}, &out); err != nil {
		return nil, err
	}
	return out.Inquiries, nil
}

func (c *Client) GetInsuranceInquiriesByType(ctx context.Context, t model.InsuranceType) ([]model.InsuranceInquiry, error) {
	var out InquiriesResponse
	if err := c.invoke(ctx, MethodGetInsuranceInquiriesByType, &InquiriesByTypeRequest{InsuranceType: t}, &out); err != nil {
		return nil, err
	}
	return out.Inquiries, nil
}

func (c *Client) UpdateInquiryStatus(ctx context.Context, inquiryID string, st model.InquiryStatus) error {
	return c.invoke(ctx, MethodUpdateInquiryStatus, &UpdateInquiryStatusRequest{InquiryID: inquiryID, Status: st}, &Empty{})
}

func (c *Client) GetAllAgents(ctx context.Context) ([]model.Agent, error) {
	var out AgentsResponse
	if err := c.invoke(ctx, MethodGetAllAgents, &Empty{}, &out); err != nil {
		return nil, err
	}
	return out.Agents, nil
}

func (c *Client) AddAgent(ctx context.Context, a model.Agent) error {
	return c.invoke(ctx, MethodAddAgent, &AddAgentRequest{Agent: a}, &Empty{})
}

func (c *Client) SendMessageToAgent(ctx context.Context, agentID, message string) (string, error) {
	var out SendMessageResponse
	if err := c.invoke(ctx, MethodSendMessageToAgent, &SendMessageRequest{AgentID: agentID, Message: message}, &out); err != nil {
		return "", err
	}
	return out.MessageID, nil
}

func (c *Client) GetAllContactMessages(ctx context.Context) ([]model.ContactMessage, error) {
	var out MessagesResponse
	if err := c.invoke(ctx, MethodGetAllContactMessages, &Empty{}, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) GetContactMessagesForAgent(ctx context.Context, agentID string) ([]model.ContactMessage, error) {
	var out MessagesResponse
	if err := c.invoke(ctx, MethodGetContactMessagesForAgent, &MessagesForAgentRequest{AgentID: agentID}, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) AssignCallerUserRole(ctx context.Context, principal string, role model.Role) error {
	return c.invoke(ctx, MethodAssignCallerUserRole, &AssignUserRoleRequest{User: principal, Role: role}, &Empty{})
}
