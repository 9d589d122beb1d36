package backup

import (
	"fmt"

	"copyjob/internal/logger"
	"copyjob/internal/model"

	"go.uber.org/zap"
)

type JobStore interface {
	JobLister
	Find(name string) (model.Job, error)
	Add(job model.Job) (model.Job, error)
	Update(name string, job model.Job) (model.Job, error)
	Remove(name string) error
}

type StateRegistry interface {
	StateStore
	Load(jobNames []string) error
	Rename(oldName, newName string) error
	Remove(name string) error
}

// Manager keeps job definitions, job state and the transfer log in step
// when jobs are created, edited or deleted.
type Manager struct {
	jobs   JobStore
	states StateRegistry
	tlog   TransferLog
	log    *zap.Logger
}

func NewManager(jobs JobStore, states StateRegistry, tlog TransferLog, log *zap.Logger) *Manager {
	return &Manager{
		jobs:   jobs,
		states: states,
		tlog:   tlog,
		log:    logger.OrNop(log),
	}
}

// LoadState builds the state store for the current job set.
func (m *Manager) LoadState() error {
	jobs, err := m.jobs.List()
	if err != nil {
		return fmt.Errorf("failed to list jobs: %w", err)
	}

	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name)
	}

	return m.states.Load(names)
}

func (m *Manager) Jobs() ([]model.Job, error) {
	return m.jobs.List()
}

func (m *Manager) Find(name string) (model.Job, error) {
	return m.jobs.Find(name)
}

func (m *Manager) Add(job model.Job) (model.Job, error) {
	if job.Kind == "" {
		job.Kind = model.JobKindFull
	}
	if err := validate(job); err != nil {
		return model.Job{}, err
	}

	created, err := m.jobs.Add(job)
	if err != nil {
		return model.Job{}, err
	}

	if err := m.states.Remove(created.Name); err != nil {
		m.log.Warn("failed to clear stale state", zap.String("job", created.Name), zap.Error(err))
	}
	if err := m.states.Update(created.Name, nil); err != nil {
		m.log.Warn("failed to create job state", zap.String("job", created.Name), zap.Error(err))
	}

	m.admin(created.Name, model.ActionJobCreated, "job created: "+created.String())
	m.log.Info("job created",
		zap.String("job", created.Name),
		zap.String("src", created.SourcePath),
		zap.String("dst", created.TargetPath))

	return created, nil
}

func (m *Manager) Update(name string, job model.Job) (model.Job, error) {
	if job.Name == "" {
		job.Name = name
	}
	if err := validate(job); err != nil {
		return model.Job{}, err
	}

	updated, err := m.jobs.Update(name, job)
	if err != nil {
		return model.Job{}, err
	}

	if updated.Name != name {
		if err := m.states.Rename(name, updated.Name); err != nil {
			m.log.Warn("failed to rename job state",
				zap.String("from", name),
				zap.String("to", updated.Name),
				zap.Error(err))
		}
	}

	m.admin(updated.Name, model.ActionJobUpdated, "job updated: "+updated.String())
	m.log.Info("job updated", zap.String("job", updated.Name))

	return updated, nil
}

func (m *Manager) Remove(name string) error {
	if err := m.jobs.Remove(name); err != nil {
		return err
	}

	if err := m.states.Remove(name); err != nil {
		m.log.Warn("failed to remove job state", zap.String("job", name), zap.Error(err))
	}

	m.admin(name, model.ActionJobDeleted, "job deleted")
	m.log.Info("job deleted", zap.String("job", name))

	return nil
}

func (m *Manager) admin(name string, action model.ActionType, message string) {
	if err := m.tlog.RecordAdminAction(name, action, message); err != nil {
		m.log.Warn("failed to record admin action",
			zap.String("job", name),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

func validate(job model.Job) error {
	switch {
	case job.Name == "":
		return fmt.Errorf("job name is required")
	case job.SourcePath == "":
		return fmt.Errorf("source path is required")
	case job.TargetPath == "":
		return fmt.Errorf("target path is required")
	}

	return nil
}
