package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ghtrigger/pkg/cli/config"
	controller "github.com/m-mizutani/ghtrigger/pkg/controller/http"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg       config.Server
		githubCfg       config.GitHub
		consumerCfg     config.Consumer
		sentryCfg       config.Sentry
		instructionsCfg config.Instructions
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, consumerCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, instructionsCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.From(ctx)

			logger.Info("Starting ghtrigger server",
				slog.Any("server", serverCfg),
				slog.Any("github", githubCfg),
				slog.Any("consumer", consumerCfg),
				slog.Any("sentry", sentryCfg),
			)

			enabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if enabled {
				defer sentry.Flush(2 * time.Second)
			}

			secret, err := githubCfg.Secret()
			if err != nil {
				return err
			}

			instructions, err := instructionsCfg.Load()
			if err != nil {
				return err
			}

			consumer, cleanup, err := consumerCfg.Build()
			if err != nil {
				return goerr.Wrap(err, "failed to create consumer")
			}
			defer cleanup()

			webhookUC := usecase.NewWebhook(consumer,
				usecase.WithInstructions(instructions),
				usecase.WithDispatchTimeout(consumerCfg.DispatchTimeout),
			)

			opts := append(serverCfg.Options(),
				controller.WithWebhookSecret(secret),
				controller.WithConsumerName(consumer.Name()),
			)
			server, err := controller.NewServer(ctx, webhookUC, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx, serverCfg.ShutdownTimeout); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
