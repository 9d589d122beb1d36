package model

import "time"

type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityError Severity = "ERROR"
)

type ActionType string

const (
	ActionFileTransfer       ActionType = "FILE_TRANSFER"
	ActionJobCreated         ActionType = "JOB_CREATED"
	ActionJobUpdated         ActionType = "JOB_UPDATED"
	ActionJobDeleted         ActionType = "JOB_DELETED"
	ActionExecutionStarted   ActionType = "EXECUTION_STARTED"
	ActionExecutionCompleted ActionType = "EXECUTION_COMPLETED"
	ActionFileError          ActionType = "FILE_ERROR"
	ActionCriticalError      ActionType = "CRITICAL_ERROR"
)

// TransferRecord is one immutable entry of the transfer log.
// TransferTime is always the real elapsed time in milliseconds; a failed
// copy is marked by Success=false and LogType=ERROR.
type TransferRecord struct {
	Timestamp    time.Time  `json:"timestamp"`
	BackupName   string     `json:"backupName"`
	SourcePath   string     `json:"sourcePath"`
	TargetPath   string     `json:"targetPath"`
	FileSize     int64      `json:"fileSize"`
	TransferTime int64      `json:"transferTime"`
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	LogType      Severity   `json:"logType"`
	ActionType   ActionType `json:"actionType"`
}

func (r TransferRecord) IsTransfer() bool {
	return r.ActionType == ActionFileTransfer
}
