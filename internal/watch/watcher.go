// Package watch re-runs backup jobs when files under their source change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"copyjob/internal/backup"
	"copyjob/internal/logger"
	"copyjob/internal/model"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Runner interface {
	RunNames(names []string) ([]backup.Report, error)
}

type root struct {
	job    string
	src    string
	target string
}

type Watcher struct {
	fw     *fsnotify.Watcher
	runner Runner
	delay  time.Duration
	roots  []root
	log    *zap.Logger
}

func New(runner Runner, delay time.Duration, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &Watcher{
		fw:     fw,
		runner: runner,
		delay:  delay,
		log:    logger.OrNop(log),
	}, nil
}

// Add watches every directory under the job's source.
func (w *Watcher) Add(job model.Job) error {
	src, err := filepath.Abs(job.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	target, err := filepath.Abs(job.TargetPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source directory not found: %w", err)
	}

	if err := w.addRecursive(src); err != nil {
		return err
	}

	w.roots = append(w.roots, root{job: job.Name, src: src, target: target})
	w.log.Info("watching job source",
		zap.String("job", job.Name),
		zap.String("dir", src))

	return nil
}

// Run blocks until ctx is done, running each job once its source has been
// quiet for the debounce delay. Runs happen one after another.
func (w *Watcher) Run(ctx context.Context) error {
	triggers := make(chan string, 16)
	runs := Debounce(triggers, w.delay)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for name := range runs {
			w.log.Info("change detected, running job", zap.String("job", name))
			if _, err := w.runner.RunNames([]string{name}); err != nil {
				w.log.Error("watch run failed", zap.String("job", name), zap.Error(err))
			}
		}
	}()

	defer func() {
		close(triggers)
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, triggers)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event, triggers chan<- string) {
	if ev.Op == fsnotify.Chmod || strings.HasSuffix(ev.Name, ".copyjob.tmp") {
		return
	}

	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.log.Warn("failed to watch new directory",
					zap.String("path", ev.Name),
					zap.Error(err))
			}
		}
	}

	for _, r := range w.roots {
		if within(r.target, ev.Name) || !within(r.src, ev.Name) {
			continue
		}

		select {
		case triggers <- r.job:
		default:
			w.log.Debug("trigger queue full, dropping event",
				zap.String("path", ev.Name))
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			for _, r := range w.roots {
				if within(r.target, path) {
					return filepath.SkipDir
				}
			}
			if err := w.fw.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.log.Debug("watching directory", zap.String("path", path))
		}

		return nil
	})
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
