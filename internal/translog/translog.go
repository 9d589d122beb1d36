// Package translog keeps the audit trail of every file copy and every job
// lifecycle event, one JSON array file per day.
package translog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"copyjob/internal/logger"
	"copyjob/internal/model"
	"copyjob/internal/util"

	"go.uber.org/zap"
)

const dayLayout = "2006-01-02"

// Transfer describes one finished copy attempt.
type Transfer struct {
	JobName    string
	SourcePath string
	TargetPath string
	Size       int64
	Elapsed    time.Duration
	Timestamp  time.Time
	Err        error
}

// Log appends records by rewriting the day file as a whole under mu, so
// concurrent writers never interleave or drop records.
type Log struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
	log *zap.Logger
}

func New(dir string, log *zap.Logger) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	l := &Log{
		dir: dir,
		now: time.Now,
		log: logger.OrNop(log),
	}

	if err := createEmpty(l.pathFor(l.now())); err != nil {
		return nil, err
	}

	return l, nil
}

// createEmpty writes "[]" unless the file already exists, possibly created
// by another process.
func createEmpty(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create log file: %w", err)
	}

	if _, err := f.WriteString("[]"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to create log file: %w", err)
	}

	return f.Close()
}

func (l *Log) Dir() string {
	return l.dir
}

// RecordTransfer appends one FILE_TRANSFER record. A failed transfer is
// recorded with size 0 and severity ERROR.
func (l *Log) RecordTransfer(t Transfer) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = l.now()
	}

	rec := model.TransferRecord{
		Timestamp:    t.Timestamp,
		BackupName:   t.JobName,
		SourcePath:   t.SourcePath,
		TargetPath:   t.TargetPath,
		FileSize:     t.Size,
		TransferTime: t.Elapsed.Milliseconds(),
		Success:      true,
		Message:      "File transferred",
		LogType:      model.SeverityInfo,
		ActionType:   model.ActionFileTransfer,
	}

	if t.Err != nil {
		rec.FileSize = 0
		rec.Success = false
		rec.Message = "Error during transfer: " + t.Err.Error()
		rec.LogType = model.SeverityError
	}

	return l.append(rec)
}

// RecordAdminAction appends a lifecycle record. Error actions are written
// with severity ERROR.
func (l *Log) RecordAdminAction(jobName string, action model.ActionType, message string) error {
	rec := model.TransferRecord{
		Timestamp:  l.now(),
		BackupName: jobName,
		Success:    true,
		Message:    message,
		LogType:    model.SeverityInfo,
		ActionType: action,
	}

	if isErrorAction(action) {
		rec.Success = false
		rec.LogType = model.SeverityError
	}

	return l.append(rec)
}

// ReadAll returns today's records in append order.
func (l *Log) ReadAll() ([]model.TransferRecord, error) {
	return l.ReadDay(l.now())
}

func (l *Log) ReadDay(day time.Time) ([]model.TransferRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read(l.pathFor(day))
}

// Days lists the dates that have a log file, oldest first.
func (l *Log) Days() ([]time.Time, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, "*.json"))
	if err != nil {
		return nil, err
	}

	var days []time.Time
	for _, m := range matches {
		name := filepath.Base(m)
		day, err := time.ParseInLocation(dayLayout, name[:len(name)-len(".json")], time.Local)
		if err != nil {
			continue
		}
		days = append(days, day)
	}

	return days, nil
}

func (l *Log) append(rec model.TransferRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.pathFor(rec.Timestamp)
	records, err := l.read(path)
	if err != nil {
		return err
	}

	records = append(records, rec)
	if err := util.WriteJSON(path, records); err != nil {
		return fmt.Errorf("failed to append transfer log: %w", err)
	}

	l.log.Debug("transfer log appended",
		zap.String("job", rec.BackupName),
		zap.String("action", string(rec.ActionType)),
		zap.String("type", string(rec.LogType)))

	return nil
}

func (l *Log) read(path string) ([]model.TransferRecord, error) {
	var records []model.TransferRecord
	if _, err := util.ReadJSON(path, &records); err != nil {
		return nil, fmt.Errorf("failed to read transfer log: %w", err)
	}

	if records == nil {
		records = []model.TransferRecord{}
	}

	return records, nil
}

func (l *Log) pathFor(t time.Time) string {
	return filepath.Join(l.dir, t.Format(dayLayout)+".json")
}

func isErrorAction(action model.ActionType) bool {
	return action == model.ActionFileError || action == model.ActionCriticalError
}
