package repository

import (
	"errors"
	"fmt"

	"copyjob/internal/model"

	"gorm.io/gorm"
)

var (
	ErrMaxJobsReached = errors.New("maximum number of jobs reached")
	ErrJobNotFound    = errors.New("job not found")
	ErrJobExists      = errors.New("job already exists")
)

type JobRepository struct {
	db      *gorm.DB
	maxJobs int
}

func NewJobRepository(db *gorm.DB, maxJobs int) *JobRepository {
	return &JobRepository{db: db, maxJobs: maxJobs}
}

func (r *JobRepository) MaxJobs() int {
	return r.maxJobs
}

// List returns jobs in creation order, which is also their 1-based
// display order.
func (r *JobRepository) List() ([]model.Job, error) {
	var jobs []model.Job
	return jobs, r.db.Order("id asc").Find(&jobs).Error
}

func (r *JobRepository) Find(name string) (model.Job, error) {
	var job model.Job
	err := r.db.Where("name = ?", name).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return job, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return job, err
}

func (r *JobRepository) Add(job model.Job) (model.Job, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Job{}).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(r.maxJobs) {
			return ErrMaxJobsReached
		}

		if exists, err := nameTaken(tx, job.Name, 0); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("%w: %s", ErrJobExists, job.Name)
		}

		job.ID = 0
		return tx.Create(&job).Error
	})

	return job, err
}

// Update replaces the definition stored under name. updated.Name may
// differ from name to rename the job.
func (r *JobRepository) Update(name string, updated model.Job) (model.Job, error) {
	var job model.Job
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrJobNotFound, name)
			}
			return err
		}

		if updated.Name != "" && updated.Name != name {
			if exists, err := nameTaken(tx, updated.Name, job.ID); err != nil {
				return err
			} else if exists {
				return fmt.Errorf("%w: %s", ErrJobExists, updated.Name)
			}
			job.Name = updated.Name
		}

		job.SourcePath = updated.SourcePath
		job.TargetPath = updated.TargetPath
		if updated.Kind != "" {
			job.Kind = updated.Kind
		}

		return tx.Save(&job).Error
	})

	return job, err
}

func (r *JobRepository) Remove(name string) error {
	res := r.db.Unscoped().Where("name = ?", name).Delete(&model.Job{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}

	return nil
}

func nameTaken(tx *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&model.Job{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error

	return count > 0, err
}
