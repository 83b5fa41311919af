package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/tokenkit/internal/config"
	"github.com/aelexs/tokenkit/internal/domain"
)

// --- Stubs ---

type stubSMClient struct {
	getSecretValueFn func(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

func (s *stubSMClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	return s.getSecretValueFn(ctx, params, optFns...)
}

type stubSSMClient struct {
	getParameterFn func(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

func (s *stubSSMClient) GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
	return s.getParameterFn(ctx, params, optFns...)
}

// --- Tests ---

func TestLoad_Env(t *testing.T) {
	l := NewLoader(nil, nil)

	t.Run("returns configured secret", func(t *testing.T) {
		got, err := l.Load(context.Background(), config.TokenConfig{
			SecretSource: domain.SecretSourceEnv,
			Secret:       "inline-secret",
		})

		require.NoError(t, err)
		assert.Equal(t, "inline-secret", got.Expose())
	})

	t.Run("empty secret is not found", func(t *testing.T) {
		_, err := l.Load(context.Background(), config.TokenConfig{SecretSource: domain.SecretSourceEnv})

		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})
}

func TestLoad_SecretsManager(t *testing.T) {
	cfg := config.TokenConfig{
		SecretSource: domain.SecretSourceSecretsManager,
		SecretID:     "tokenkit/jwt-secret",
	}

	t.Run("string secret", func(t *testing.T) {
		sm := &stubSMClient{
			getSecretValueFn: func(ctx context.Context, params *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline, "load must be bounded")
				assert.Equal(t, "tokenkit/jwt-secret", aws.ToString(params.SecretId))
				return &secretsmanager.GetSecretValueOutput{SecretString: aws.String("sm-secret")}, nil
			},
		}

		got, err := NewLoader(sm, nil).Load(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, "sm-secret", got.Expose())
	})

	t.Run("binary secret", func(t *testing.T) {
		sm := &stubSMClient{
			getSecretValueFn: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{SecretBinary: []byte("binary-secret")}, nil
			},
		}

		got, err := NewLoader(sm, nil).Load(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, "binary-secret", got.Expose())
	})

	t.Run("empty secret", func(t *testing.T) {
		sm := &stubSMClient{
			getSecretValueFn: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return &secretsmanager.GetSecretValueOutput{}, nil
			},
		}

		_, err := NewLoader(sm, nil).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})

	t.Run("API error is wrapped", func(t *testing.T) {
		apiErr := errors.New("AccessDeniedException")
		sm := &stubSMClient{
			getSecretValueFn: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, apiErr
			},
		}

		_, err := NewLoader(sm, nil).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, apiErr)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.True(t, domain.IsRetryable(err))
		assert.Contains(t, err.Error(), "tokenkit/jwt-secret")
	})

	t.Run("missing secret is not retryable", func(t *testing.T) {
		sm := &stubSMClient{
			getSecretValueFn: func(_ context.Context, _ *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
				return nil, &smtypes.ResourceNotFoundException{Message: aws.String("no such secret")}
			},
		}

		_, err := NewLoader(sm, nil).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
		assert.False(t, domain.IsRetryable(err))
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := NewLoader(nil, nil).Load(context.Background(), cfg)

		assert.Error(t, err)
	})
}

func TestLoad_SSM(t *testing.T) {
	cfg := config.TokenConfig{
		SecretSource: domain.SecretSourceSSM,
		SecretID:     "/tokenkit/jwt/secret",
	}

	t.Run("decrypted parameter", func(t *testing.T) {
		ssm := &stubSSMClient{
			getParameterFn: func(_ context.Context, params *awsssm.GetParameterInput, _ ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
				assert.Equal(t, "/tokenkit/jwt/secret", aws.ToString(params.Name))
				assert.True(t, aws.ToBool(params.WithDecryption))
				return &awsssm.GetParameterOutput{
					Parameter: &ssmtypes.Parameter{Value: aws.String("ssm-secret")},
				}, nil
			},
		}

		got, err := NewLoader(nil, ssm).Load(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, "ssm-secret", got.Expose())
	})

	t.Run("parameter without value", func(t *testing.T) {
		ssm := &stubSSMClient{
			getParameterFn: func(_ context.Context, _ *awsssm.GetParameterInput, _ ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
				return &awsssm.GetParameterOutput{}, nil
			},
		}

		_, err := NewLoader(nil, ssm).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
	})

	t.Run("throttled fetch is retryable", func(t *testing.T) {
		ssm := &stubSSMClient{
			getParameterFn: func(_ context.Context, _ *awsssm.GetParameterInput, _ ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
				return nil, errors.New("ThrottlingException: rate exceeded")
			},
		}

		_, err := NewLoader(nil, ssm).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrUnavailable)
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("unknown parameter", func(t *testing.T) {
		ssm := &stubSSMClient{
			getParameterFn: func(_ context.Context, _ *awsssm.GetParameterInput, _ ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error) {
				return nil, &ssmtypes.ParameterNotFound{Message: aws.String("missing")}
			},
		}

		_, err := NewLoader(nil, ssm).Load(context.Background(), cfg)

		assert.ErrorIs(t, err, domain.ErrSecretNotFound)
		assert.False(t, domain.IsRetryable(err))
	})
}

func TestLoad_UnknownSource(t *testing.T) {
	_, err := NewLoader(nil, nil).Load(context.Background(), config.TokenConfig{SecretSource: "vault"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
