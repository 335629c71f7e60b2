package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/barkeepapp/barkeep-server/internal/domain"
	"github.com/barkeepapp/barkeep-server/internal/store"
)

// jobColumns is the ordered list of columns selected in job queries.
// Must match the scan order in scanJob.
const jobColumns = `id, bar_id, user_id, status, imported, skipped, item_errors,
	created_at, started_at, completed_at`

func scanJob(scanner interface{ Scan(dest ...any) error }) (*domain.ImportJob, error) {
	var j domain.ImportJob

	var (
		itemErrors  sql.NullString
		createdAt   string
		startedAt   sql.NullString
		completedAt sql.NullString
	)

	err := scanner.Scan(
		&j.ID,
		&j.BarID,
		&j.UserID,
		&j.Status,
		&j.Imported,
		&j.Skipped,
		&itemErrors,
		&createdAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	j.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	j.StartedAt, err = parseNullableTime(startedAt)
	if err != nil {
		return nil, err
	}
	j.CompletedAt, err = parseNullableTime(completedAt)
	if err != nil {
		return nil, err
	}

	if itemErrors.Valid && itemErrors.String != "" {
		if err := json.Unmarshal([]byte(itemErrors.String), &j.ItemErrors); err != nil {
			return nil, fmt.Errorf("decode job item errors: %w", err)
		}
	}

	return &j, nil
}

// CreateJob inserts a new import job in its initial status.
func (s *Store) CreateJob(ctx context.Context, j *domain.ImportJob) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_jobs (id, bar_id, user_id, status, imported, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID,
		j.BarID,
		j.UserID,
		string(j.Status),
		j.Imported,
		j.Skipped,
		formatTime(j.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MarkJobRunning transitions a job to running and stamps its start time.
func (s *Store) MarkJobRunning(ctx context.Context, jobID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(domain.JobRunning),
		formatTime(time.Now()),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("mark job running: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CompleteJob writes a job's terminal state: status, counts, and per-item
// errors. A job always reaches a terminal state, even when every item failed.
func (s *Store) CompleteJob(ctx context.Context, jobID string, status domain.JobStatus, imported, skipped int, itemErrors []domain.JobError) error {
	var encoded sql.NullString
	if len(itemErrors) > 0 {
		data, err := json.Marshal(itemErrors)
		if err != nil {
			return fmt.Errorf("encode job item errors: %w", err)
		}
		encoded = sql.NullString{String: string(data), Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs
		SET status = ?, imported = ?, skipped = ?, item_errors = ?, completed_at = ?
		WHERE id = ?`,
		string(status),
		imported,
		skipped,
		encoded,
		formatTime(time.Now()),
		jobID,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// FailInterruptedJobs marks every non-terminal job as failed. Queued work
// lives in process memory, so jobs left pending or running by a previous
// process can never complete; failing them at startup keeps pollers from
// waiting on a state that will never arrive.
func (s *Store) FailInterruptedJobs(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = ?, completed_at = ?
		WHERE status IN (?, ?)`,
		string(domain.JobFailed),
		formatTime(time.Now()),
		string(domain.JobPending),
		string(domain.JobRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// GetJob retrieves an import job by id.
// Returns store.ErrNotFound if the job does not exist.
func (s *Store) GetJob(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM import_jobs WHERE id = ?`, jobID)

	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}
