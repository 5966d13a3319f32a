// Package identity wraps the external identity provider. The provider is an
// opaque collaborator: it issues and revokes the capability and nothing else.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caffeinepub/insurance-inquiry/internal/errs"
	"github.com/caffeinepub/insurance-inquiry/internal/model"
	"github.com/caffeinepub/insurance-inquiry/internal/remote/rpc"
)

// Provider obtains and revokes capabilities.
type Provider interface {
	// Login acquires a capability for the configured credentials.
	Login(ctx context.Context) (model.Capability, error)
	// Logout revokes the capability at the provider, best effort.
	Logout(ctx context.Context, cap model.Capability) error
}

// GRPCProvider logs in against the identity service over the shared gateway
// transport.
type GRPCProvider struct {
	opts     rpc.Options
	username string
	password string
}

var _ Provider = (*GRPCProvider)(nil)

// NewGRPCProvider constructs a provider for one set of credentials.
func NewGRPCProvider(opts rpc.Options, username, password string) *GRPCProvider {
	return &GRPCProvider{opts: opts, username: username, password: password}
}

// Login exchanges credentials for a capability. The token expiry is read
// from the JWT claims without verification; the server remains the
// authority on validity.
func (p *GRPCProvider) Login(ctx context.Context) (model.Capability, error) {
	cc, err := rpc.NewConn(p.opts, "")
	if err != nil {
		return model.Capability{}, fmt.Errorf("%w: %w", errs.ErrAuthenticationFailed, err)
	}
	defer cc.Close()

	var out rpc.LoginResponse
	if err := cc.Invoke(ctx, rpc.MethodIdentityLogin, &rpc.LoginRequest{Username: p.username, Password: p.password}, &out); err != nil {
		return model.Capability{}, fmt.Errorf("%w: %w", errs.ErrAuthenticationFailed, err)
	}
	if out.Principal == "" || out.AccessToken == "" {
		return model.Capability{}, fmt.Errorf("%w: empty principal/token", errs.ErrAuthenticationFailed)
	}
	return model.Capability{
		Principal:   out.Principal,
		AccessToken: out.AccessToken,
		ExpiresAt:   TokenExpiry(out.AccessToken),
	}, nil
}

// Logout revokes the token at the provider.
func (p *GRPCProvider) Logout(ctx context.Context, cap model.Capability) error {
	cc, err := rpc.NewConn(p.opts, cap.AccessToken)
	if err != nil {
		return err
	}
	defer cc.Close()
	return cc.Invoke(ctx, rpc.MethodIdentityLogout, &rpc.Empty{}, &rpc.Empty{})
}

// TokenExpiry extracts the exp claim; falls back to a short default when the
// token carries none.
func TokenExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	_, _ = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) { return nil, nil },
		jwt.WithoutClaimsValidation(),
	)
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	return time.Now().Add(15 * time.Minute)
}
