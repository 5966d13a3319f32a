package rpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/caffeinepub/insurance-inquiry/internal/model"
)

// Full method paths of the backend service.
const (
	backendService = "insurance.v1.InsuranceBackend"

	MethodGetCallerUserProfile        = "/" + backendService + "/GetCallerUserProfile"
	MethodSaveCallerUserProfile       = "/" + backendService + "/SaveCallerUserProfile"
	MethodIsCallerAdmin               = "/" + backendService + "/IsCallerAdmin"
	MethodGetAllInsurancePlans        = "/" + backendService + "/GetAllInsurancePlans"
	MethodGetInsurancePlansByType     = "/" + backendService + "/GetInsurancePlansByType"
	MethodAddInsurancePlan            = "/" + backendService + "/AddInsurancePlan"
	MethodSubmitInsuranceInquiry      = "/" + backendService + "/SubmitInsuranceInquiry"
	MethodGetMyInsuranceInquiries     = "/" + backendService + "/GetMyInsuranceInquiries"
	MethodGetAllInsuranceInquiries    = "/" + backendService + "/GetAllInsuranceInquiries"
	MethodGetInsuranceInquiriesByType = "/" + backendService + "/GetInsuranceInquiriesByType"
	MethodUpdateInquiryStatus         = "/" + backendService + "/UpdateInquiryStatus"
	MethodGetAllAgents                = "/" + backendService + "/GetAllAgents"
	MethodAddAgent                    = "/" + backendService + "/AddAgent"
	MethodSendMessageToAgent          = "/" + backendService + "/SendMessageToAgent"
	MethodGetAllContactMessages       = "/" + backendService + "/GetAllContactMessages"
	MethodGetContactMessagesForAgent  = "/" + backendService + "/GetContactMessagesForAgent"
	MethodAssignCallerUserRole        = "/" + backendService + "/AssignCallerUserRole"
)

// Full method paths of the identity service.
const (
	identityService = "insurance.v1.Identity"

	MethodIdentityLogin  = "/" + identityService + "/Login"
	MethodIdentityLogout = "/" + identityService + "/Logout"
)

// Empty is the request/response of parameterless calls.
type Empty struct{}

// Backend wire shapes. Field names are exchanged verbatim with the gateway.
type (
	GetCallerUserProfileResponse struct {
		Profile *model.UserProfile `json:"profile"`
	}
	SaveCallerUserProfileRequest struct {
		Profile model.UserProfile `json:"profile"`
	}
	IsCallerAdminResponse struct {
		IsAdmin bool `json:"isAdmin"`
	}
	PlansResponse struct {
		Plans []model.InsurancePlan `json:"plans"`
	}
	PlansByTypeRequest struct {
		InsuranceType model.InsuranceType `json:"insuranceType"`
	}
	AddInsurancePlanRequest struct {
		Plan model.InsurancePlan `json:"plan"`
	}
	SubmitInquiryRequest struct {
		InsuranceType model.InsuranceType `json:"insuranceType"`
		Details       string              `json:"details"`
	}
	SubmitInquiryResponse struct {
		InquiryID string `json:"inquiryId"`
	}
	InquiriesResponse struct {
		Inquiries []model.InsuranceInquiry `json:"inquiries"`
	}
	InquiriesByTypeRequest struct {
		InsuranceType model.InsuranceType `json:"insuranceType"`
	}
	UpdateInquiryStatusRequest struct {
		InquiryID string              `json:"inquiryId"`
		Status    model.InquiryStatus `json:"status"`
	}
	AgentsResponse struct {
		Agents []model.Agent `json:"agents"`
	}
	AddAgentRequest struct {
		Agent model.Agent `json:"agent"`
	}
	SendMessageRequest struct {
		AgentID string `json:"agentId"`
		Message string `json:"message"`
	}
	SendMessageResponse struct {
		MessageID string `json:"messageId"`
	}
	MessagesResponse struct {
		Messages []model.ContactMessage `json:"messages"`
	}
	MessagesForAgentRequest struct {
		AgentID string `json:"agentId"`
	}
	AssignUserRoleRequest struct {
		User string     `json:"user"`
		Role model.Role `json:"role"`
	}
)

// Identity wire shapes.
type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	LoginResponse struct {
		Principal   string `json:"principal"`
		AccessToken string `json:"accessToken"`
	}
)

// BackendServer is the handler interface behind BackendServiceDesc. The
// production gateway lives elsewhere; in-process fakes implement this for
// round-trip tests.
type BackendServer interface {
	GetCallerUserProfile(ctx context.Context, in *Empty) (*GetCallerUserProfileResponse, error)
	SaveCallerUserProfile(ctx context.Context, in *SaveCallerUserProfileRequest) (*Empty, error)
	IsCallerAdmin(ctx context.Context, in *Empty) (*IsCallerAdminResponse, error)
	GetAllInsurancePlans(ctx context.Context, in *Empty) (*PlansResponse, error)
	GetInsurancePlansByType(ctx context.Context, in *PlansByTypeRequest) (*PlansResponse, error)
	AddInsurancePlan(ctx context.Context, in *AddInsurancePlanRequest) (*Empty, error)
	SubmitInsuranceInquiry(ctx context.Context, in *SubmitInquiryRequest) (*SubmitInquiryResponse, error)
	GetMyInsuranceInquiries(ctx context.Context, in *Empty) (*InquiriesResponse, error)
	GetAllInsuranceInquiries(ctx context.Context, in *Empty) (*InquiriesResponse, error)
	GetInsuranceInquiriesByType(ctx context.Context, in *InquiriesByTypeRequest) (*InquiriesResponse, error)
	UpdateInquiryStatus(ctx context.Context, in *UpdateInquiryStatusRequest) (*Empty, error)
	GetAllAgents(ctx context.Context, in *Empty) (*AgentsResponse, error)
	AddAgent(ctx context.Context, in *AddAgentRequest) (*Empty, error)
	SendMessageToAgent(ctx context.Context, in *SendMessageRequest) (*SendMessageResponse, error)
	GetAllContactMessages(ctx context.Context, in *Empty) (*MessagesResponse, error)
	GetContactMessagesForAgent(ctx context.Context, in *MessagesForAgentRequest) (*MessagesResponse, error)
	AssignCallerUserRole(ctx context.Context, in *AssignUserRoleRequest) (*Empty, error)
}

// IdentityServer is the handler interface behind IdentityServiceDesc.
type IdentityServer interface {
	Login(ctx context.Context, in *LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, in *Empty) (*Empty, error)
}

// unary builds a grpc.MethodDesc handler for one typed method.
func unary[S any, Req any, Resp any](method string, call func(s S, ctx context.Context, in *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(S)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

func name(full string) string {
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '/' {
			return full[i+1:]
		}
	}
	return full
}

// BackendServiceDesc registers a BackendServer on a grpc.Server.
var BackendServiceDesc = grpc.ServiceDesc{
	ServiceName: backendService,
	HandlerType: (*BackendServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: name(MethodGetCallerUserProfile), Handler: unary(MethodGetCallerUserProfile, BackendServer.GetCallerUserProfile)},
		{MethodName: name(MethodSaveCallerUserProfile), Handler: unary(MethodSaveCallerUserProfile, BackendServer.SaveCallerUserProfile)},
		{MethodName: name(MethodIsCallerAdmin), Handler: unary(MethodIsCallerAdmin, BackendServer.IsCallerAdmin)},
		{MethodName: name(MethodGetAllInsurancePlans), Handler: unary(MethodGetAllInsurancePlans, BackendServer.GetAllInsurancePlans)},
		{MethodName: name(MethodGetInsurancePlansByType), Handler: unary(MethodGetInsurancePlansByType, BackendServer.GetInsurancePlansByType)},
		{MethodName: name(MethodAddInsurancePlan), Handler: unary(MethodAddInsurancePlan, BackendServer.AddInsurancePlan)},
		{MethodName: name(MethodSubmitInsuranceInquiry), Handler: unary(MethodSubmitInsuranceInquiry, BackendServer.SubmitInsuranceInquiry)},
		{MethodName: name(MethodGetMyInsuranceInquiries), Handler: unary(MethodGetMyInsuranceInquiries, BackendServer.GetMyInsuranceInquiries)},
		{MethodName: name(MethodGetAllInsuranceInquiries), Handler: unary(MethodGetAllInsuranceInquiries, BackendServer.GetAllInsuranceInquiries)},
		{MethodName: name(MethodGetInsuranceInquiriesByType), Handler: unary(MethodGetInsuranceInquiriesByType, BackendServer.GetInsuranceInquiriesByType)},
		{MethodName: name(MethodUpdateInquiryStatus), Handler: unary(MethodUpdateInquiryStatus, BackendServer.UpdateInquiryStatus)},
		{MethodName: name(MethodGetAllAgents), Handler: unary(MethodGetAllAgents, BackendServer.GetAllAgents)},
		{MethodName: name(MethodAddAgent), Handler: unary(MethodAddAgent, BackendServer.AddAgent)},
		{MethodName: name(MethodSendMessageToAgent), Handler: unary(MethodSendMessageToAgent, BackendServer.SendMessageToAgent)},
		{MethodName: name(MethodGetAllContactMessages), Handler: unary(MethodGetAllContactMessages, BackendServer.GetAllContactMessages)},
		{MethodName: name(MethodGetContactMessagesForAgent), Handler: unary(MethodGetContactMessagesForAgent, BackendServer.GetContactMessagesForAgent)},
		{MethodName: name(MethodAssignCallerUserRole), Handler: unary(MethodAssignCallerUserRole, BackendServer.AssignCallerUserRole)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "insurance/v1/backend",
}

// IdentityServiceDesc registers an IdentityServer on a grpc.Server.
var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: identityService,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: name(MethodIdentityLogin), Handler: unary(MethodIdentityLogin, IdentityServer.Login)},
		{MethodName: name(MethodIdentityLogout), Handler: unary(MethodIdentityLogout, IdentityServer.Logout)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "insurance/v1/identity",
}
