package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/creerweb/contact-form/internal/app/bootstrap"
	appconfig "github.com/creerweb/contact-form/internal/config"
	"github.com/creerweb/contact-form/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	app, err := setup(context.Background(), cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		logger.Error("failed to initialize contact form lambda", "error", err)
		os.Exit(1)
	}

	lambda.Start(app.Handler.Handle)
}

// setup builds the handler once per cold start; warm invocations reuse it.
func setup(ctx context.Context, cfg *appconfig.Config, reg prometheus.Registerer, logger *logging.Logger) (*bootstrap.ContactApp, error) {
	logger.Info("starting contact form lambda",
		"env", cfg.Env,
		"lead_store", cfg.LeadStore,
		"email_provider", cfg.EmailProvider,
	)
	app, err := bootstrap.BuildContactApp(ctx, cfg, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("contact-lambda: %w", err)
	}
	return app, nil
}
