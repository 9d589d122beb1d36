package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"copyjob/internal/model"
	"copyjob/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch [name...]",
	Short: "Re-run jobs whenever their source changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := app.Log

		jobs, err := selectJobs(args)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			log.Info("no jobs configured, use 'copyjob job add <name> <src> <dst>' to add one")
			return nil
		}

		w, err := watch.New(app.Executor, time.Duration(cfg.DebounceMS)*time.Millisecond, log)
		if err != nil {
			return err
		}

		defer func(w *watch.Watcher) {
			_ = w.Close()
		}(w)

		var names []string
		for _, job := range jobs {
			if err := w.Add(job); err != nil {
				log.Warn("failed to watch job",
					zap.String("job", job.Name),
					zap.Error(err))
				continue
			}
			names = append(names, job.Name)
		}

		if watchInitial && len(names) > 0 {
			if _, err := app.Executor.RunNames(names); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log.Info("watching",
			zap.Strings("jobs", names))

		return w.Run(ctx)
	},
}

func selectJobs(names []string) ([]model.Job, error) {
	if len(names) == 0 {
		return app.Manager.Jobs()
	}

	jobs := make([]model.Job, 0, len(names))
	for _, name := range names {
		job, err := app.Manager.Find(name)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "run every watched job once at startup")
	rootCmd.AddCommand(watchCmd)
}
