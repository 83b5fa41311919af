package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	apiv1 "github.com/aelexs/tokenkit/api/v1"
	"github.com/aelexs/tokenkit/internal/authn"
	"github.com/aelexs/tokenkit/internal/config"
	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/introspect"
	"github.com/aelexs/tokenkit/internal/observability"
	"github.com/aelexs/tokenkit/internal/secrets"
	"github.com/aelexs/tokenkit/internal/server"
)

// publicMethods skip bearer authentication.
var publicMethods = []string{
	healthpb.Health_Check_FullMethodName,
	healthpb.Health_Watch_FullMethodName,
}

// setup is the tokend composition root. It loads the shared secret, builds
// the authenticator, and registers the introspection API on both transports.
func setup(ctx context.Context, deps server.SetupDeps) (func(context.Context) error, error) {
	cfg := deps.Config
	logger := deps.Logger

	// 1. Shared secret.
	secret, err := loadSecret(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("tokend setup: load secret: %w", err)
	}

	// 2. Authentication.
	metrics, err := observability.NewAuthnMetrics(observability.Meter("tokenkit/authn"))
	if err != nil {
		return nil, fmt.Errorf("tokend setup: create metrics: %w", err)
	}
	auth := authn.New(authn.Config{
		Secret:        secret,
		Leeway:        cfg.Token.Leeway,
		PublicMethods: publicMethods,
		Logger:        logger,
		Metrics:       metrics,
	})

	// 3. Introspection API.
	svc := introspect.NewService(introspect.Config{
		Authenticator: auth,
		ExpiryWindow:  cfg.Token.ExpiryWindow,
		OpenAPI:       apiv1.OpenAPI,
	})

	gwMux, err := svc.NewHTTPHandler()
	if err != nil {
		return nil, fmt.Errorf("tokend setup: register http routes: %w", err)
	}
	deps.HTTPMux.Handle("/", gwMux)

	if deps.GRPCServer != nil {
		deps.Interceptors.AddUnary(auth.UnaryServerInterceptor())
		deps.Interceptors.AddStream(auth.StreamServerInterceptor())
		svc.RegisterGRPC(deps.GRPCServer)
	}

	logger.InfoContext(ctx, "tokend initialized",
		slog.String("source", string(cfg.Token.SecretSource)),
		slog.Duration("expiry_window", cfg.Token.ExpiryWindow),
		slog.Duration("leeway", cfg.Token.Leeway),
	)

	return nil, nil
}

// loadSecret resolves the shared secret. Local development without a
// configured secret gets an ephemeral random one; tokens signed before a
// restart stop verifying.
func loadSecret(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.SecretString, error) {
	if cfg.IsLocal() && cfg.Token.SecretSource == domain.SecretSourceEnv && cfg.Token.Secret.IsEmpty() {
		secret, err := ephemeralSecret()
		if err != nil {
			return "", err
		}
		logger.Warn("using ephemeral shared secret for local development")
		return secret, nil
	}

	loader := secrets.NewLoader(nil, nil)
	if cfg.Token.SecretSource != domain.SecretSourceEnv {
		clients, err := secrets.NewClients(ctx, secrets.AWSConfig{
			Region:   cfg.AWS.Region,
			Endpoint: cfg.AWS.Endpoint,
			Timeout:  domain.SecretLoadTimeout,
		})
		if err != nil {
			return "", err
		}
		loader = secrets.NewLoader(clients.SM, clients.SSM)
	}

	return loader.Load(ctx, cfg.Token)
}

func ephemeralSecret() (domain.SecretString, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ephemeral secret: %w", err)
	}
	return domain.SecretString(hex.EncodeToString(buf)), nil
}
