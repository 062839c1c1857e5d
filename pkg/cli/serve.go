package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/shipwright/pkg/controller/github"
	controller "github.com/m-mizutani/shipwright/pkg/controller/http"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/infra/executor"
	"github.com/m-mizutani/shipwright/pkg/infra/memory"
	"github.com/m-mizutani/shipwright/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		githubCfg    config.GitHub
		pipelineCfg  config.Pipeline
		indexCfg     config.Index
		firestoreCfg config.Firestore
		storageCfg   config.Storage
		slackCfg     config.Slack
		sentryCfg    config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, pipelineCfg.Flags()...)
	flags = append(flags, indexCfg.Flags()...)
	flags = append(flags, firestoreCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving GitHub webhooks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting shipwright server",
				slog.String("addr", serverCfg.Addr),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			// Run records go to Firestore when a project is
			// configured, otherwise they stay in process memory.
			var runRepo interfaces.RunRepository
			if firestoreCfg.Enabled() {
				fsClient, err := firestoreCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create Firestore client")
				}
				defer fsClient.Close()
				runRepo = fsClient
			} else {
				logger.Warn("No Firestore project configured, run records are kept in memory")
				runRepo = memory.NewRunRepository()
			}

			pipelineOpts := []usecase.PipelineOption{
				usecase.WithRunRepository(runRepo),
				usecase.WithPipelineConfig(pipelineCfg.Config()),
			}

			if storageCfg.Enabled() {
				gcsClient, err := storageCfg.Configure(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create Cloud Storage client")
				}
				defer gcsClient.Close()
				pipelineOpts = append(pipelineOpts, usecase.WithArtifactStore(gcsClient))
			}

			if slackCfg.Enabled() {
				pipelineOpts = append(pipelineOpts, usecase.WithNotifier(slackCfg.Configure()))
			}

			pipelineUC := usecase.NewPipeline(
				githubClient,
				indexCfg.Configure(),
				executor.New(),
				pipelineOpts...,
			)
			webhookUC := usecase.NewWebhook()

			trigger := pipelineCfg.Trigger()
			logger.Info("Pipeline trigger configured",
				slog.Any("patterns", trigger.Patterns()),
			)

			processor := githubcontroller.NewEventProcessor(pipelineUC, trigger)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				processor,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
				controller.WithRunRepository(runRepo),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
