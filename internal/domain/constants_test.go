package domain_test

import (
	"testing"

	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsValidSecretSource(t *testing.T) {
	tests := []struct {
		name string
		src  domain.SecretSource
		want bool
	}{
		{name: "env is valid", src: "env", want: true},
		{name: "secretsmanager is valid", src: "secretsmanager", want: true},
		{name: "ssm is valid", src: "ssm", want: true},
		{name: "empty is invalid", src: "", want: false},
		{name: "vault is invalid", src: "vault", want: false},
		{name: "SSM is invalid (case-sensitive)", src: "SSM", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.IsValidSecretSource(tt.src)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShutdownBudgetsFitGracefulTimeout(t *testing.T) {
	total := domain.ShutdownDrainDelay + domain.ShutdownHTTPTimeout + domain.ShutdownGRPCTimeout +
		domain.ShutdownCleanupTimeout + domain.ShutdownOTELTimeout
	assert.LessOrEqual(t, total, domain.GracefulShutdownTimeout)
}
