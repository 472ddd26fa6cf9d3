package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a job does not exist.
var ErrNotFound = errors.New("not found")

// Open opens (creating if needed) the sqlite database at path and migrates
// the schema.
func Open(path string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// SQLite only supports one writer
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&Job{}, &HopHistory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return conn, nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func CreateJob(conn *gorm.DB, job *Job) error {
	if job.Status == "" {
		job.Status = StatusPending
	}
	return conn.Create(job).Error
}

func GetJob(conn *gorm.DB, id string) (*Job, error) {
	var job Job
	if err := conn.First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &job, nil
}

// ListJobs returns a page of jobs, newest first, and the total matching count.
func ListJobs(conn *gorm.DB, status Status, limit, offset int) ([]Job, int64, error) {
	q := conn.Model(&Job{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	jobs := []Job{}
	err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&jobs).Error
	return jobs, total, err
}

// SetStatus updates a job's status. lastErr is stored as-is, so nil clears it.
func SetStatus(conn *gorm.DB, id string, status Status, lastErr *string) error {
	res := conn.Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"last_error": lastErr,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return nil
}

// AdvanceHop records that hop has completed.
func AdvanceHop(conn *gorm.DB, id string, hop int) error {
	return conn.Model(&Job{}).Where("id = ?", id).Update("current_hop", hop).Error
}

func InsertHopHistory(conn *gorm.DB, h *HopHistory) error {
	return conn.Create(h).Error
}

func ListHops(conn *gorm.DB, jobID string) ([]HopHistory, error) {
	hops := []HopHistory{}
	err := conn.Where("job_id = ?", jobID).Order("hop_index asc, id asc").Find(&hops).Error
	return hops, err
}

// GetStats counts jobs per status. Credits of failed jobs are refunded and so
// not counted as charged.
func GetStats(conn *gorm.DB) (*Stats, error) {
	stats := &Stats{}
	row := conn.Raw(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'running' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status <> 'failed' THEN credits ELSE 0 END), 0)
		FROM jobs`).Row()
	err := row.Scan(&stats.Total, &stats.Pending, &stats.Running, &stats.Success, &stats.Failed, &stats.CreditsCharged)
	return stats, err
}
