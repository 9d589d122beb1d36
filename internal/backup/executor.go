// Package backup runs backup jobs: it enumerates a job's source tree, copies
// each file to the target tree and projects every step into the transfer
// log and the job state store.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"copyjob/internal/enumerator"
	"copyjob/internal/logger"
	"copyjob/internal/model"
	"copyjob/internal/translog"
	"copyjob/internal/util"

	"go.uber.org/zap"
)

var ErrFileCopyFailed = errors.New("file copy failed")

type JobLister interface {
	List() ([]model.Job, error)
}

type TransferLog interface {
	RecordTransfer(t translog.Transfer) error
	RecordAdminAction(jobName string, action model.ActionType, message string) error
}

type StateStore interface {
	Update(name string, mutate func(st *model.JobState)) error
}

// Report summarizes one run.
type Report struct {
	Job         string
	TotalFiles  int
	TotalBytes  int64
	Copied      int
	CopiedBytes int64
	Failed      int
	Duration    time.Duration
}

// Executor runs one job at a time; concurrent callers queue on mu.
type Executor struct {
	mu       sync.Mutex
	jobs     JobLister
	enum     *enumerator.Enumerator
	tlog     TransferLog
	states   StateStore
	log      *zap.Logger
	copyFile func(src, dst string) (int64, error)
}

func NewExecutor(jobs JobLister, enum *enumerator.Enumerator, tlog TransferLog, states StateStore, log *zap.Logger) *Executor {
	if enum == nil {
		enum = enumerator.New(nil)
	}

	return &Executor{
		jobs:     jobs,
		enum:     enum,
		tlog:     tlog,
		states:   states,
		log:      logger.OrNop(log),
		copyFile: util.CopyFile,
	}
}

// Run copies every file of job synchronously. Per-file failures are
// recorded and skipped; the only error returned is a critical one that
// prevented the job from starting, wrapping enumerator.ErrSourceNotFound.
func (e *Executor) Run(job model.Job) (Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run(job)
}

// RunMany runs the jobs at the given 1-based positions of the current job
// list, in order. Out of range positions are skipped. A critical failure of
// one job does not stop the others.
func (e *Executor) RunMany(indices []int) ([]Report, error) {
	jobs, err := e.jobs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	var selected []model.Job
	for _, i := range indices {
		if i < 1 || i > len(jobs) {
			e.log.Debug("skipping out of range job index",
				zap.Int("index", i),
				zap.Int("jobs", len(jobs)))
			continue
		}
		selected = append(selected, jobs[i-1])
	}

	return e.runAll(selected), nil
}

// RunNames runs the named jobs in order, skipping unknown names.
func (e *Executor) RunNames(names []string) ([]Report, error) {
	jobs, err := e.jobs.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	byName := make(map[string]model.Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name] = j
	}

	var selected []model.Job
	for _, name := range names {
		job, ok := byName[name]
		if !ok {
			e.log.Warn("skipping unknown job", zap.String("job", name))
			continue
		}
		selected = append(selected, job)
	}

	return e.runAll(selected), nil
}

func (e *Executor) runAll(jobs []model.Job) []Report {
	reports := make([]Report, 0, len(jobs))
	for _, job := range jobs {
		report, err := e.Run(job)
		if err != nil {
			e.log.Error("job aborted",
				zap.String("job", job.Name),
				zap.Error(err))
		}
		reports = append(reports, report)
	}

	return reports
}

func (e *Executor) run(job model.Job) (Report, error) {
	started := time.Now()
	report := Report{Job: job.Name}

	e.admin(job.Name, model.ActionExecutionStarted,
		fmt.Sprintf("execution started (%s): %s -> %s", job.Kind, job.SourcePath, job.TargetPath))
	e.log.Info("job started",
		zap.String("job", job.Name),
		zap.String("src", job.SourcePath),
		zap.String("dst", job.TargetPath),
		zap.String("kind", string(job.Kind)))

	files, srcRoot, dstRoot, err := e.prepare(job)
	if err != nil {
		e.abort(job, err)
		report.Duration = time.Since(started)
		return report, err
	}

	for _, f := range files {
		report.TotalFiles++
		report.TotalBytes += f.Size
	}

	e.updateState(job.Name, func(st *model.JobState) {
		st.Status = model.JobStatusActive
		st.TotalFiles = report.TotalFiles
		st.TotalBytes = report.TotalBytes
		st.FilesRemaining = report.TotalFiles
		st.BytesRemaining = report.TotalBytes
		st.CurrentSourceFile = ""
		st.CurrentTargetFile = ""
	})

	for _, f := range files {
		written, err := e.copyOne(job.Name, f, srcRoot, dstRoot)
		if err != nil {
			report.Failed++
			continue
		}
		report.Copied++
		report.CopiedBytes += written
	}

	e.updateState(job.Name, func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.FilesRemaining = 0
		st.BytesRemaining = 0
		st.CurrentSourceFile = ""
		st.CurrentTargetFile = ""
	})

	report.Duration = time.Since(started)
	e.admin(job.Name, model.ActionExecutionCompleted,
		fmt.Sprintf("execution complete: %d copied, %d failed", report.Copied, report.Failed))
	e.log.Info("job completed",
		zap.String("job", job.Name),
		zap.Int("copied", report.Copied),
		zap.Int("failed", report.Failed),
		zap.Int64("bytes", report.CopiedBytes),
		zap.Duration("elapsed", report.Duration))

	return report, nil
}

func (e *Executor) prepare(job model.Job) ([]enumerator.File, string, string, error) {
	srcRoot, err := filepath.Abs(job.SourcePath)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", enumerator.ErrSourceNotFound, err)
	}

	dstRoot, err := filepath.Abs(job.TargetPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("invalid target path %q: %w", job.TargetPath, err)
	}

	files, err := e.enum.Collect(srcRoot)
	if err != nil {
		return nil, "", "", err
	}

	return files, srcRoot, dstRoot, nil
}

// abort ends a job that could not start. The state still reaches Inactive.
func (e *Executor) abort(job model.Job, cause error) {
	e.admin(job.Name, model.ActionCriticalError, "critical error: "+cause.Error())
	e.updateState(job.Name, func(st *model.JobState) {
		st.Status = model.JobStatusInactive
		st.FilesRemaining = 0
		st.BytesRemaining = 0
		st.CurrentSourceFile = ""
		st.CurrentTargetFile = ""
	})
}

func (e *Executor) copyOne(jobName string, f enumerator.File, srcRoot, dstRoot string) (int64, error) {
	dst := targetPath(srcRoot, dstRoot, f.Path)

	e.updateState(jobName, func(st *model.JobState) {
		st.CurrentSourceFile = f.Path
		st.CurrentTargetFile = dst
	})

	start := time.Now()
	written, err := e.copyTo(f.Path, dst)
	elapsed := time.Since(start)

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrFileCopyFailed, f.Path, err)
		e.record(translog.Transfer{
			JobName:    jobName,
			SourcePath: f.Path,
			TargetPath: dst,
			Elapsed:    elapsed,
			Timestamp:  time.Now(),
			Err:        err,
		})
		e.admin(jobName, model.ActionFileError, err.Error())
		e.log.Warn("copy failed",
			zap.String("job", jobName),
			zap.String("src", f.Path),
			zap.String("dst", dst),
			zap.Error(err))
		return 0, err
	}

	e.record(translog.Transfer{
		JobName:    jobName,
		SourcePath: f.Path,
		TargetPath: dst,
		Size:       written,
		Elapsed:    elapsed,
		Timestamp:  time.Now(),
	})
	e.updateState(jobName, func(st *model.JobState) {
		st.FilesRemaining = max(st.FilesRemaining-1, 0)
		st.BytesRemaining = max(st.BytesRemaining-f.Size, 0)
	})
	e.log.Debug("copied",
		zap.String("job", jobName),
		zap.String("src", f.Path),
		zap.String("dst", dst),
		zap.Int64("bytes", written),
		zap.Duration("elapsed", elapsed))

	return written, nil
}

func (e *Executor) copyTo(src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("failed to create target dir: %w", err)
	}

	return e.copyFile(src, dst)
}

func (e *Executor) updateState(name string, mutate func(st *model.JobState)) {
	if err := e.states.Update(name, mutate); err != nil {
		e.log.Warn("failed to update job state",
			zap.String("job", name),
			zap.Error(err))
	}
}

func (e *Executor) record(t translog.Transfer) {
	if err := e.tlog.RecordTransfer(t); err != nil {
		e.log.Warn("failed to record transfer",
			zap.String("job", t.JobName),
			zap.String("src", t.SourcePath),
			zap.Error(err))
	}
}

func (e *Executor) admin(name string, action model.ActionType, message string) {
	if err := e.tlog.RecordAdminAction(name, action, message); err != nil {
		e.log.Warn("failed to record admin action",
			zap.String("job", name),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func targetPath(srcRoot, dstRoot, path string) string {
	rel, err := filepath.Rel(srcRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(dstRoot, filepath.Base(path))
	}

	return filepath.Join(dstRoot, rel)
}
