package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })
	return conn
}

func newJob(account string, credits int) *Job {
	return &Job{
		ID:          uuid.NewString(),
		AccountID:   account,
		Source:      "txt",
		Target:      "png",
		Path:        JoinPath([]string{"txt", "pdf", "png"}),
		Steps:       2,
		SizeBytes:   1024,
		Category:    "image",
		QualityTier: "standard",
		Credits:     credits,
	}
}

func TestCreateAndGetJob(t *testing.T) {
	conn := openTestDB(t)

	job := newJob("alice", 3)
	require.NoError(t, CreateJob(conn, job))
	assert.Equal(t, StatusPending, job.Status)

	got, err := GetJob(conn, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.AccountID)
	assert.Equal(t, []string{"txt", "pdf", "png"}, got.Formats())
	assert.Nil(t, got.LastError)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = GetJob(conn, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	conn := openTestDB(t)
	job := newJob("bob", 1)
	require.NoError(t, CreateJob(conn, job))

	msg := "hop 1 failed"
	require.NoError(t, SetStatus(conn, job.ID, StatusFailed, &msg))
	got, err := GetJob(conn, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.Equal(t, msg, *got.LastError)

	require.NoError(t, SetStatus(conn, job.ID, StatusSuccess, nil))
	got, err = GetJob(conn, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.Nil(t, got.LastError)

	assert.ErrorIs(t, SetStatus(conn, "missing", StatusRunning, nil), ErrNotFound)
}

func TestListJobs(t *testing.T) {
	conn := openTestDB(t)
	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 5; i++ {
		job := newJob("carol", 1)
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if i%2 == 0 {
			job.Status = StatusSuccess
		}
		require.NoError(t, CreateJob(conn, job))
		ids = append(ids, job.ID)
	}

	jobs, total, err := ListJobs(conn, "", 2, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, ids[4], jobs[0].ID)
	assert.Equal(t, ids[3], jobs[1].ID)

	jobs, total, err = ListJobs(conn, StatusSuccess, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, jobs, 3)

	jobs, total, err = ListJobs(conn, StatusRunning, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestHopsAndAdvance(t *testing.T) {
	conn := openTestDB(t)
	job := newJob("dave", 2)
	require.NoError(t, CreateJob(conn, job))

	start := time.Now()
	for i, pair := range [][2]string{{"txt", "pdf"}, {"pdf", "png"}} {
		require.NoError(t, InsertHopHistory(conn, &HopHistory{
			JobID:      job.ID,
			HopIndex:   i,
			From:       pair[0],
			To:         pair[1],
			Converter:  "simulated",
			Status:     StatusSuccess,
			StartTime:  start,
			EndTime:    start.Add(time.Second),
			DurationMs: 1000,
		}))
		require.NoError(t, AdvanceHop(conn, job.ID, i+1))
	}

	hops, err := ListHops(conn, job.ID)
	require.NoError(t, err)
	require.Len(t, hops, 2)
	assert.Equal(t, "pdf", hops[1].From)
	assert.Equal(t, "png", hops[1].To)

	got, err := GetJob(conn, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentHop)

	hops, err = ListHops(conn, "missing")
	require.NoError(t, err)
	assert.Empty(t, hops)
}

func TestGetStats(t *testing.T) {
	conn := openTestDB(t)

	stats, err := GetStats(conn)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, *stats)

	for _, tc := range []struct {
		status  Status
		credits int
	}{
		{StatusPending, 2},
		{StatusRunning, 3},
		{StatusSuccess, 5},
		{StatusFailed, 7},
	} {
		job := newJob("erin", tc.credits)
		job.Status = tc.status
		require.NoError(t, CreateJob(conn, job))
	}

	stats, err = GetStats(conn)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Pending: 1, Running: 1, Success: 1, Failed: 1, CreditsCharged: 10}, *stats)
}
