package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

// RequestRecorder receives per-request transport outcomes.
type RequestRecorder interface {
	RecordRequest(method, code string)
	RecordThrottle(reason string)
}

// Config captures the settings required to construct gRPC server options.
type Config struct {
	TLSCertFile     string
	TLSKeyFile      string
	TLSClientCAFile string
	AllowInsecure   bool
	RateLimitPerMin int
	Auth            AuthConfig
	Logger          *slog.Logger
	Recorder        RequestRecorder
	// Telemetry installs the otelgrpc stats handler.
	Telemetry bool
}

// GrpcServerCreds builds the credentials option. It returns nil when TLS is
// disabled and insecure listening is allowed.
func GrpcServerCreds(cfg Config) (grpc.ServerOption, error) {
	certPath := strings.TrimSpace(cfg.TLSCertFile)
	keyPath := strings.TrimSpace(cfg.TLSKeyFile)
	clientCAPath := strings.TrimSpace(cfg.TLSClientCAFile)
	requireClientCert := len(cfg.Auth.AllowedClientCNs) > 0

	if certPath == "" || keyPath == "" {
		if requireClientCert || clientCAPath != "" {
			return nil, fmt.Errorf("mtls requires server certificate, key, and client ca configuration")
		}
		if cfg.AllowInsecure {
			return nil, nil
		}
		return nil, fmt.Errorf("tls certificate and key are required")
	}

	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("load tls keypair: %w", err)
	}
	tlsCfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
	}
	if clientCAPath != "" {
		pem, err := os.ReadFile(clientCAPath)
		if err != nil {
			return nil, fmt.Errorf("read client ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("parse client ca: invalid pem data")
		}
		tlsCfg.ClientCAs = pool
		tlsCfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	// Certificates are optional at the handshake so token callers can still
	// connect; the auth interceptor decides per method.
	if requireClientCert && tlsCfg.ClientCAs == nil {
		return nil, fmt.Errorf("client ca bundle required for mtls")
	}
	return grpc.Creds(credentials.NewTLS(tlsCfg)), nil
}

// ServerOptions assembles credentials, telemetry and the interceptor chain:
// recovery, logging, metrics, rate limiting, then authentication.
func ServerOptions(cfg Config) ([]grpc.ServerOption, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var options []grpc.ServerOption
	creds, err := GrpcServerCreds(cfg)
	if err != nil {
		return nil, err
	}
	if creds != nil {
		options = append(options, creds)
	}
	if cfg.Telemetry {
		options = append(options, grpc.StatsHandler(otelgrpc.NewServerHandler()))
	}

	unary := []grpc.UnaryServerInterceptor{
		recoveryUnaryInterceptor(logger),
		loggingUnaryInterceptor(logger),
	}
	if cfg.Recorder != nil {
		unary = append(unary, metricsUnaryInterceptor(cfg.Recorder))
	}
	if limiter := newRequestLimiter(cfg.RateLimitPerMin); limiter != nil {
		unary = append(unary, limiter.unaryInterceptor(cfg.Recorder))
	}
	auth := cfg.Auth
	if auth.Logger == nil {
		auth.Logger = logger
	}
	unary = append(unary, NewAuthInterceptor(auth))
	options = append(options, grpc.ChainUnaryInterceptor(unary...))
	return options, nil
}

func loggingUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (_ interface{}, err error) {
		start := time.Now()
		defer func() {
			code := status.Code(err)
			level := slog.LevelDebug
			if code == codes.Internal || code == codes.Unknown {
				level = slog.LevelError
			}
			logger.Log(ctx, level, "grpc unary", "method", info.FullMethod, "code", code.String(), "duration", time.Since(start))
		}()
		return handler(ctx, req)
	}
}

func recoveryUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (_ interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "panic in unary handler", "method", info.FullMethod, "panic", r)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func metricsUnaryInterceptor(rec RequestRecorder) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		rec.RecordRequest(info.FullMethod, status.Code(err).String())
		return resp, err
	}
}

type requestLimiter struct {
	limiter *rate.Limiter
}

func newRequestLimiter(perMinute int) *requestLimiter {
	if perMinute <= 0 {
		return nil
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	return &requestLimiter{limiter: rate.NewLimiter(limit, perMinute)}
}

func (r *requestLimiter) unaryInterceptor(rec RequestRecorder) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !r.limiter.Allow() {
			if rec != nil {
				rec.RecordThrottle("rate_limit")
			}
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
