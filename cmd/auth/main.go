// Command auth runs the gatekeeper email/password authentication service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/app"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "gatekeeper: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := app.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
