package domain

import "time"

// Compiled defaults. Most can be overridden via configuration.
const (
	// Token handling
	DefaultExpiryWindow = 5 * time.Minute // Window used when a caller asks "will this expire soon?" without a value
	DefaultLeeway       = 0               // Clock skew tolerated on exp/nbf checks
	MaxExpiryWindow     = 24 * time.Hour  // Upper bound accepted from request parameters

	// Grant types
	GrantPassword = "password"

	// Secret loading
	SecretLoadTimeout = 5 * time.Second // Max time for a Secrets Manager / SSM fetch

	// Graceful shutdown
	GracefulShutdownTimeout = 30 * time.Second
	ShutdownDrainDelay      = 1 * time.Second  // Health reports 503 before listeners close
	ShutdownHTTPTimeout     = 10 * time.Second // HTTP connection drain budget
	ShutdownGRPCTimeout     = 10 * time.Second // gRPC GracefulStop budget before Stop
	ShutdownCleanupTimeout  = 3 * time.Second  // Budget for the service cleanup returned by Setup
	ShutdownOTELTimeout     = 5 * time.Second  // Flush budget for metrics + traces
)

// SecretSource names where the shared signing secret is loaded from.
type SecretSource string

const (
	SecretSourceEnv            SecretSource = "env"
	SecretSourceSecretsManager SecretSource = "secretsmanager"
	SecretSourceSSM            SecretSource = "ssm"
)

// IsValidSecretSource checks if a secret source is supported.
func IsValidSecretSource(s SecretSource) bool {
	switch s {
	case SecretSourceEnv, SecretSourceSecretsManager, SecretSourceSSM:
		return true
	}
	return false
}
