// Package secrets loads the shared token-signing secret at startup.
// Only this package may import the Secrets Manager and SSM SDKs.
package secrets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
)

// AWSConfig holds connection parameters for the AWS secret stores.
type AWSConfig struct {
	// Region is the AWS region (e.g. "us-east-1").
	Region string

	// Endpoint overrides the default AWS endpoint, e.g. a LocalStack URL.
	// Static test credentials are used when it is set.
	Endpoint string

	// Timeout is the HTTP client timeout for AWS requests.
	Timeout time.Duration
}

// Clients holds the AWS SDK clients a Loader reads from.
type Clients struct {
	SM  *secretsmanager.Client
	SSM *awsssm.Client
}

// NewClients creates Secrets Manager and SSM clients configured from cfg.
func NewClients(ctx context.Context, cfg AWSConfig) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		opts = append(opts,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("test", "test", ""),
			),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	if cfg.Timeout > 0 {
		awsCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	var smOpts []func(*secretsmanager.Options)
	var ssmOpts []func(*awsssm.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		smOpts = append(smOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
		ssmOpts = append(ssmOpts, func(o *awsssm.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &Clients{
		SM:  secretsmanager.NewFromConfig(awsCfg, smOpts...),
		SSM: awsssm.NewFromConfig(awsCfg, ssmOpts...),
	}, nil
}
