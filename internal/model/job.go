package model

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type JobKind string

const (
	JobKindFull         JobKind = "Full"
	JobKindDifferential JobKind = "Differential"
)

// ParseJobKind accepts either kind name regardless of case.
func ParseJobKind(s string) (JobKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "":
		return JobKindFull, nil
	case "differential", "diff":
		return JobKindDifferential, nil
	default:
		return "", fmt.Errorf("unknown job kind: %q", s)
	}
}

// Job is a backup job definition. Kind is stored but never used to skip files.
type Job struct {
	gorm.Model
	Name       string  `gorm:"uniqueIndex;not null" json:"name"`
	SourcePath string  `gorm:"not null" json:"source_path"`
	TargetPath string  `gorm:"not null" json:"target_path"`
	Kind       JobKind `gorm:"not null;default:'Full'" json:"kind"`
}

func (j Job) String() string {
	return fmt.Sprintf("%s [%s] : %s -> %s", j.Name, j.Kind, j.SourcePath, j.TargetPath)
}
