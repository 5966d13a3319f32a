package rpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Options configure a connection to the gateway.
type Options struct {
	Addr     string
	CACert   string // PEM file; empty uses system roots
	Insecure bool   // plaintext, dev only
	Logger   *zap.Logger
}

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func transportCreds(caPath string, insecureConn bool) (credentials.TransportCredentials, error) {
	if insecureConn {
		return insecure.NewCredentials(), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// NewConn opens a raw client conn for collaborators that speak another
// service over the same transport (the identity provider).
func NewConn(opts Options, bearer string) (*grpc.ClientConn, error) {
	return dialConn(opts, bearer)
}

// dialConn opens a lazily connecting client conn. A non-empty bearer token
// is attached to every call as per-RPC credentials.
func dialConn(opts Options, bearer string) (*grpc.ClientConn, error) {
	creds, err := transportCreds(opts.CACert, opts.Insecure)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
		grpc.WithChainUnaryInterceptor(
			RequestIDUnary(),
			LoggingUnary(log),
		),
	}
	if bearer != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(bearerCreds{token: bearer, secure: !opts.Insecure}))
	}
	return grpc.NewClient(opts.Addr, dialOpts...)
}
