package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aelexs/tokenkit/internal/config"
	"github.com/aelexs/tokenkit/internal/domain"
)

var tracer = otel.Tracer("tokenkit/secrets")

// smClient is the narrow consumer-defined interface for Secrets Manager operations.
type smClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// ssmClient is the narrow consumer-defined interface for SSM Parameter Store operations.
type ssmClient interface {
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

// Loader resolves the shared secret from the configured source. The secret
// is read once; there is no caching or rotation.
type Loader struct {
	sm  smClient
	ssm ssmClient
}

// NewLoader creates a Loader. Either client may be nil when its source is
// not configured.
func NewLoader(sm smClient, ssm ssmClient) *Loader {
	return &Loader{sm: sm, ssm: ssm}
}

// Load returns the shared secret described by cfg.
func (l *Loader) Load(ctx context.Context, cfg config.TokenConfig) (domain.SecretString, error) {
	ctx, span := tracer.Start(ctx, "secrets.Load")
	defer span.End()
	span.SetAttributes(attribute.String("secret.source", string(cfg.SecretSource)))

	ctx, cancel := context.WithTimeout(ctx, domain.SecretLoadTimeout)
	defer cancel()

	secret, err := l.load(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("secret.retryable", domain.IsRetryable(err)))
		span.SetStatus(codes.Error, "load secret")
		return "", err
	}
	return secret, nil
}

func (l *Loader) load(ctx context.Context, cfg config.TokenConfig) (domain.SecretString, error) {
	switch cfg.SecretSource {
	case domain.SecretSourceEnv:
		if cfg.Secret.IsEmpty() {
			return "", fmt.Errorf("%w: token.secret is empty", domain.ErrSecretNotFound)
		}
		return cfg.Secret, nil

	case domain.SecretSourceSecretsManager:
		if l.sm == nil {
			return "", fmt.Errorf("secrets manager client not configured")
		}
		return l.fromSecretsManager(ctx, cfg.SecretID)

	case domain.SecretSourceSSM:
		if l.ssm == nil {
			return "", fmt.Errorf("ssm client not configured")
		}
		return l.fromSSM(ctx, cfg.SecretID)

	default:
		return "", fmt.Errorf("%w: secret source %q", domain.ErrInvalidInput, cfg.SecretSource)
	}
}

func (l *Loader) fromSecretsManager(ctx context.Context, id string) (domain.SecretString, error) {
	out, err := l.sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: secret %q: %w", domain.ErrSecretNotFound, id, err)
		}
		return "", fmt.Errorf("fetching secret %q from Secrets Manager: %w: %w", id, domain.ErrUnavailable, err)
	}

	switch {
	case out.SecretString != nil && *out.SecretString != "":
		return domain.SecretString(*out.SecretString), nil
	case len(out.SecretBinary) > 0:
		return domain.SecretString(out.SecretBinary), nil
	}
	return "", fmt.Errorf("%w: secret %q has no value", domain.ErrSecretNotFound, id)
}

func (l *Loader) fromSSM(ctx context.Context, name string) (domain.SecretString, error) {
	out, err := l.ssm.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", fmt.Errorf("%w: SSM parameter %q: %w", domain.ErrSecretNotFound, name, err)
		}
		return "", fmt.Errorf("fetching parameter %q from SSM: %w: %w", name, domain.ErrUnavailable, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return "", fmt.Errorf("%w: SSM parameter %q has no value", domain.ErrSecretNotFound, name)
	}
	return domain.SecretString(*out.Parameter.Value), nil
}
