// Package authn authenticates bearer tokens at the HTTP and gRPC
// boundaries. A verified token is stored in the request context and read
// back with FromContext.
package authn

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/observability"
	"github.com/aelexs/tokenkit/internal/token"
)

// Transport labels used on spans and metrics.
const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds everything an Authenticator needs.
type Config struct {
	Secret domain.SecretString
	Leeway time.Duration
	Clock  domain.Clock // nil uses the wall clock

	// PublicMethods are full gRPC method names that skip authentication.
	PublicMethods []string

	Logger  *slog.Logger                // nil uses slog.Default()
	Metrics *observability.AuthnMetrics // nil disables metrics
}

// Authenticator verifies bearer tokens against a single shared secret.
type Authenticator struct {
	secret  domain.SecretString
	opts    []token.Option
	clock   domain.Clock
	public  map[string]struct{}
	logger  *slog.Logger
	metrics *observability.AuthnMetrics
	tracer  trace.Tracer
}

// New builds an Authenticator from cfg.
func New(cfg Config) *Authenticator {
	clock := cfg.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	public := make(map[string]struct{}, len(cfg.PublicMethods))
	for _, m := range cfg.PublicMethods {
		public[m] = struct{}{}
	}

	return &Authenticator{
		secret:  cfg.Secret,
		opts:    []token.Option{token.WithClock(clock), token.WithLeeway(cfg.Leeway)},
		clock:   clock,
		public:  public,
		logger:  logger,
		metrics: cfg.Metrics,
		tracer:  otel.Tracer("tokenkit/authn"),
	}
}

// Options returns the verification options this Authenticator applies,
// so follow-up checks (WillExpire) use the same clock and leeway.
func (a *Authenticator) Options() []token.Option {
	return a.opts
}

// Secret returns the shared secret used for verification.
func (a *Authenticator) Secret() domain.SecretString {
	return a.secret
}

// Authenticate extracts the bearer token from an Authorization value and
// verifies it. A missing token fails with domain.ErrMissingToken.
func (a *Authenticator) Authenticate(ctx context.Context, authorization, transport string) (*token.Token, string, error) {
	ctx, span := a.tracer.Start(ctx, "authn.verify",
		trace.WithAttributes(attribute.String("authn.transport", transport)),
	)
	defer span.End()

	start := a.clock.Now()
	raw := token.ParseTokenFromAuthorization(authorization)

	var (
		tok *token.Token
		err error
	)
	if raw == "" {
		err = domain.ErrMissingToken
	} else {
		tok, err = token.Verify(ctx, raw, a.secret.Expose(), a.opts...)
	}

	result := outcome(err)
	span.SetAttributes(attribute.String("authn.outcome", result))
	if a.metrics != nil {
		elapsed := float64(a.clock.Now().Sub(start).Microseconds()) / 1000
		a.metrics.RecordVerification(ctx, transport, result, elapsed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, result)
		// Bad client tokens are routine. KindOther covers local causes
		// (cancelled context, empty secret) and warrants a warning.
		level := slog.LevelDebug
		if !domain.IsClientError(err) || result == "other" {
			level = slog.LevelWarn
		}
		observability.WithTraceID(ctx, a.logger).Log(ctx, level, "bearer token rejected",
			slog.String("transport", transport),
			slog.String("outcome", result),
			slog.Any("error", err),
		)
		return nil, "", err
	}

	return tok, raw, nil
}

// isPublic reports whether a gRPC method bypasses authentication.
func (a *Authenticator) isPublic(fullMethod string) bool {
	_, ok := a.public[fullMethod]
	return ok
}

// outcome maps a verification result to a low-cardinality metric label.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, domain.ErrMissingToken) {
		return "missing"
	}

	var verr *token.VerificationError
	if !errors.As(err, &verr) {
		return "error"
	}
	switch verr.Kind {
	case token.KindMalformed:
		return "malformed"
	case token.KindSignatureInvalid:
		return "signature_invalid"
	case token.KindExpired:
		return "expired"
	case token.KindNotValidYet:
		return "not_valid_yet"
	default:
		return "other"
	}
}
