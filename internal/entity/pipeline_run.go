package entity

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

// RunStatus is the lifecycle state of a pipeline cycle.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun is the audit record of one pipeline cycle. Summary holds the
// serialized run summary counts.
type PipelineRun struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StartedAt   time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt sql.NullTime   `json:"completed_at,omitempty"`
	Status      RunStatus      `gorm:"not null" json:"status"`
	Summary     datatypes.JSON `json:"summary,omitempty"`
}

// TableName specifies the table name for the PipelineRun model.
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
