package runs

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/database"
)

// CleanupJob deletes runs past the retention window and checkpoints the
// WAL afterwards. Scheduled daily.
type CleanupJob struct {
	repo          *Repository
	db            *database.DB
	retentionDays int
	log           zerolog.Logger
}

// NewCleanupJob creates the retention cleanup job.
func NewCleanupJob(repo *Repository, db *database.DB, retentionDays int, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:          repo,
		db:            db,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "runs_cleanup").Logger(),
	}
}

// Name returns the job name for the scheduler.
func (j *CleanupJob) Name() string {
	return "runs_cleanup"
}

// Run executes the cleanup job.
func (j *CleanupJob) Run() error {
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays)
	j.log.Info().Time("cutoff", cutoff).Msg("Starting runs cleanup job")

	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired runs: %w", err)
	}

	if deleted > 0 {
		if err := j.db.WALCheckpoint(""); err != nil {
			j.log.Warn().Err(err).Msg("WAL checkpoint after cleanup failed")
		}
	}

	j.log.Info().Int64("deleted", deleted).Msg("Runs cleanup job completed")
	return nil
}
