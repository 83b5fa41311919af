// Package main is the entrypoint for the token service.
// tokend authenticates bearer tokens and exposes their claims over HTTP and gRPC.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aelexs/tokenkit/internal/config"
	"github.com/aelexs/tokenkit/internal/server"
)

func main() {
	ctx := context.Background()
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return server.Run(ctx, params(), server.Listeners{})
}

func params() server.Params {
	return server.Params{
		Name:               "tokend",
		PortFromConfig:     func(cfg *config.Config) int { return cfg.Tokend.HTTPPort },
		GRPCPortFromConfig: func(cfg *config.Config) int { return cfg.Tokend.GRPCPort },
		Setup:              setup,
	}
}
