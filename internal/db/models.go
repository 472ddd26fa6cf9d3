package db

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a staged job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Job is a staged conversion: a planned path that has been priced and paid for.
type Job struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID        string    `gorm:"index;not null" json:"account_id"`
	Source           string    `gorm:"not null" json:"source"`
	Target           string    `gorm:"not null" json:"target"`
	Path             string    `gorm:"not null" json:"path"` // comma-separated formats
	Steps            int       `json:"steps"`
	CurrentHop       int       `json:"current_hop"`
	FileName         string    `json:"file_name,omitempty"`
	SizeBytes        int64     `json:"size_bytes"`
	Category         string    `json:"category"`
	QualityTier      string    `json:"quality_tier"`
	Credits          int       `json:"credits"`
	EstimatedQuality int       `json:"estimated_quality"`
	Status           Status    `gorm:"index;not null" json:"status"`
	LastError        *string   `json:"last_error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Formats splits Path back into its format tokens.
func (j *Job) Formats() []string {
	if j.Path == "" {
		return nil
	}
	return strings.Split(j.Path, ",")
}

// JoinPath is the inverse of Job.Formats.
func JoinPath(formats []string) string {
	return strings.Join(formats, ",")
}

// HopHistory records one executed hop of a job.
type HopHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	JobID      string    `gorm:"index;size:36;not null" json:"job_id"`
	HopIndex   int       `json:"hop_index"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Converter  string    `json:"converter"`
	Status     Status    `json:"status"`
	Log        string    `json:"log"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMs int64     `json:"duration_ms"`
}

// Stats summarises the job table.
type Stats struct {
	Total          int64 `json:"total"`
	Pending        int64 `json:"pending"`
	Running        int64 `json:"running"`
	Success        int64 `json:"success"`
	Failed         int64 `json:"failed"`
	CreditsCharged int64 `json:"credits_charged"`
}
