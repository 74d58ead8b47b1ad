package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"vusdpool/observability/logging"
	poolv1 "vusdpool/proto/pool/v1"
)

// Scopes granted to callers.
const (
	ScopeWrite = "pool:write"
	ScopeAdmin = "pool:admin"
)

// AuthConfig lists the credentials accepted by the service. Static tokens and
// allowed mTLS identities carry every scope; JWTs carry the scopes in their
// claims.
type AuthConfig struct {
	APITokens        []string
	AllowedClientCNs []string
	JWT              JWTConfig
	// Logger receives rejected attempts. Presented credentials are masked.
	Logger *slog.Logger
}

// JWTConfig configures HS256 bearer tokens.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// ScopeClaim defaults to "scope".
	ScopeClaim string
	Leeway     time.Duration
}

// Principal identifies an authenticated caller.
type Principal struct {
	Subject string
	Scopes  []string
}

// HasScope reports whether the principal was granted scope.
func (p Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller installed by the auth interceptor.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// requiredScope returns the scope a method needs, or "" for public reads.
func requiredScope(fullMethod string) string {
	switch fullMethod {
	case poolv1.PoolService_Deposit_FullMethodName,
		poolv1.PoolService_Withdraw_FullMethodName,
		poolv1.PoolService_Borrow_FullMethodName,
		poolv1.PoolService_BorrowWithPayment_FullMethodName,
		poolv1.PoolService_Repay_FullMethodName,
		poolv1.PoolService_Liquidate_FullMethodName,
		poolv1.PoolService_DepositCollateral_FullMethodName,
		poolv1.PoolService_WithdrawCollateral_FullMethodName:
		return ScopeWrite
	case poolv1.PoolService_UpdateParams_FullMethodName,
		poolv1.PoolService_ManageAllowList_FullMethodName,
		poolv1.PoolService_Freeze_FullMethodName,
		poolv1.PoolService_Unfreeze_FullMethodName,
		poolv1.PoolService_CreatePaymentIntent_FullMethodName,
		poolv1.PoolService_RecordPaymentEvent_FullMethodName,
		poolv1.PoolService_SetPause_FullMethodName:
		return ScopeAdmin
	default:
		return ""
	}
}

type authenticator struct {
	tokens      map[string]struct{}
	commonNames map[string]struct{}
	jwtSecret   []byte
	jwtCfg      JWTConfig
	logger      *slog.Logger
}

func newAuthenticator(cfg AuthConfig) *authenticator {
	a := &authenticator{
		tokens:      make(map[string]struct{}),
		commonNames: make(map[string]struct{}),
		jwtCfg:      cfg.JWT,
		logger:      cfg.Logger,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	for _, token := range cfg.APITokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			a.tokens[trimmed] = struct{}{}
		}
	}
	for _, name := range cfg.AllowedClientCNs {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			a.commonNames[trimmed] = struct{}{}
		}
	}
	if secret := strings.TrimSpace(cfg.JWT.Secret); secret != "" {
		a.jwtSecret = []byte(secret)
	}
	if a.jwtCfg.ScopeClaim == "" {
		a.jwtCfg.ScopeClaim = "scope"
	}
	return a
}

func (a *authenticator) configured() bool {
	return len(a.tokens) > 0 || len(a.commonNames) > 0 || len(a.jwtSecret) > 0
}

// NewAuthInterceptor enforces the method scopes. Public methods pass through
// untouched.
func NewAuthInterceptor(cfg AuthConfig) grpc.UnaryServerInterceptor {
	a := newAuthenticator(cfg)
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		scope := requiredScope(info.FullMethod)
		if scope == "" {
			return handler(ctx, req)
		}
		principal, err := a.authenticate(ctx)
		if err != nil {
			a.logger.WarnContext(ctx, "pool request rejected",
				"method", info.FullMethod,
				"code", status.Code(err).String(),
				"token", logging.MaskToken(firstPresentedToken(ctx)))
			return nil, err
		}
		if !principal.HasScope(scope) {
			a.logger.WarnContext(ctx, "pool request lacks scope",
				"method", info.FullMethod,
				"subject", principal.Subject,
				"scope", scope)
			return nil, status.Errorf(codes.PermissionDenied, "scope %s required", scope)
		}
		return handler(withPrincipal(ctx, principal), req)
	}
}

func (a *authenticator) authenticate(ctx context.Context) (Principal, error) {
	if !a.configured() {
		return Principal{}, status.Error(codes.PermissionDenied, "authentication is not configured")
	}
	for _, token := range presentedTokens(ctx) {
		if _, ok := a.tokens[token]; ok {
			return Principal{Subject: "api-token", Scopes: []string{ScopeWrite, ScopeAdmin}}, nil
		}
		if len(a.jwtSecret) > 0 && strings.Count(token, ".") == 2 {
			principal, err := a.parseJWT(token)
			if err != nil {
				return Principal{}, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
			}
			return principal, nil
		}
	}
	if cn, ok := a.clientCommonName(ctx); ok {
		return Principal{Subject: "cn:" + cn, Scopes: []string{ScopeWrite, ScopeAdmin}}, nil
	}
	return Principal{}, status.Error(codes.Unauthenticated, "authentication required")
}

func (a *authenticator) parseJWT(raw string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.jwtCfg.Leeway),
		jwt.WithExpirationRequired(),
	}
	if a.jwtCfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.jwtCfg.Issuer))
	}
	if a.jwtCfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(a.jwtCfg.Audience))
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtSecret, nil
	}, opts...)
	if err != nil {
		return Principal{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("claims not map")
	}
	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return Principal{}, fmt.Errorf("subject required")
	}
	return Principal{Subject: subject, Scopes: extractScopes(claims, a.jwtCfg.ScopeClaim)}, nil
}

func extractScopes(claims jwt.MapClaims, claim string) []string {
	switch v := claims[claim].(type) {
	case string:
		return strings.Fields(v)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, entry := range v {
			if s, ok := entry.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func firstPresentedToken(ctx context.Context) string {
	if tokens := presentedTokens(ctx); len(tokens) > 0 {
		return tokens[0]
	}
	return ""
}

func presentedTokens(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	var tokens []string
	for _, header := range md.Get("authorization") {
		if token := parseBearerToken(header); token != "" {
			tokens = append(tokens, token)
		}
	}
	for _, token := range md.Get("x-api-token") {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	return tokens
}

func (a *authenticator) clientCommonName(ctx context.Context) (string, bool) {
	if len(a.commonNames) == 0 {
		return "", false
	}
	pr, ok := peer.FromContext(ctx)
	if !ok {
		return "", false
	}
	info, ok := pr.AuthInfo.(credentials.TLSInfo)
	if !ok {
		return "", false
	}
	for _, chain := range info.State.VerifiedChains {
		if len(chain) == 0 {
			continue
		}
		name := strings.TrimSpace(chain[0].Subject.CommonName)
		if _, ok := a.commonNames[name]; ok {
			return name, true
		}
	}
	return "", false
}

func parseBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
