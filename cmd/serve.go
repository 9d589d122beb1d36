package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copyjob/internal/daemon"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveShutdown time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API exposing live job state, logs and runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := app.Log

		srv := daemon.NewServer(app.Executor, app.Jobs, app.States, app.TransLog, cfg.DaemonPort, log)
		srv.Start()

		log.Info("copyjob daemon ready",
			zap.Int("port", cfg.DaemonPort),
			zap.String("state_file", app.States.Path()),
			zap.String("log_dir", app.TransLog.Dir()))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			log.Info("shutting down",
				zap.String("signal", sig.String()))
		case <-srv.StopCh():
			log.Info("stop requested via API")
		}

		ctx, cancel := context.WithTimeout(context.Background(), serveShutdown)
		defer cancel()
		return srv.Stop(ctx)
	},
}

func init() {
	serveCmd.Flags().DurationVar(&serveShutdown, "shutdown-timeout", 30*time.Second, "how long to wait for an in-flight run on shutdown")
	rootCmd.AddCommand(serveCmd)
}
