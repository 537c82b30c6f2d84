package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Yukio-aki/ai-office/internal/core/domain"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

// defaultListLimit applies when ListRuns is called without a limit.
const defaultListLimit = 20

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// CreateRun inserts a new run and its stage outputs. An existing ID is
// reported as domain.ErrAlreadyExists and left untouched.
func (s *runStore) CreateRun(ctx context.Context, run *domain.PipelineRun) error {
	return s.write(ctx, run, false)
}

// SaveRun creates or replaces a run and all of its stage outputs in one transaction.
func (s *runStore) SaveRun(ctx context.Context, run *domain.PipelineRun) error {
	return s.write(ctx, run, true)
}

const insertRun = `
	INSERT INTO runs (id, project_name, profile, complexity, plan, artifact_path, status, review, error, started_at, ended_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const upsertRun = insertRun + `
	ON CONFLICT(id) DO UPDATE SET
		project_name = excluded.project_name,
		profile = excluded.profile,
		complexity = excluded.complexity,
		plan = excluded.plan,
		artifact_path = excluded.artifact_path,
		status = excluded.status,
		review = excluded.review,
		error = excluded.error,
		started_at = excluded.started_at,
		ended_at = excluded.ended_at
`

const createRun = insertRun + `
	ON CONFLICT(id) DO NOTHING
`

func (s *runStore) write(ctx context.Context, run *domain.PipelineRun, replace bool) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	profileJSON, err := marshalNullable(run.Profile)
	if err != nil {
		return fmt.Errorf("marshalling profile: %w", err)
	}
	complexityJSON, err := json.Marshal(run.Complexity)
	if err != nil {
		return fmt.Errorf("marshalling complexity: %w", err)
	}
	planJSON, err := marshalNullable(run.Plan)
	if err != nil {
		return fmt.Errorf("marshalling plan: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := createRun
	if replace {
		query = upsertRun
	}
	res, err := tx.ExecContext(ctx, query, run.ID, run.ProjectName, profileJSON, string(complexityJSON), planJSON,
		nullString(run.ArtifactPath), string(run.Status), string(run.Review),
		nullString(run.Error), formatTime(run.StartedAt),
		formatNullableTime(run.EndedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	if !replace {
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking run insert: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("run %s: %w", run.ID, domain.ErrAlreadyExists)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_stages WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing stage outputs: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_stages (run_id, seq, stage, attempt, output, at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing stage insert: %w", err)
	}
	defer stmt.Close()

	for i, out := range run.Outputs {
		if _, err := stmt.ExecContext(ctx, run.ID, i, string(out.Stage), out.Attempt,
			out.Output, formatTime(out.At)); err != nil {
			return fmt.Errorf("saving stage output %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// GetRun retrieves a run and its stage outputs.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.PipelineRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_name, profile, complexity, plan, artifact_path, status, review, error, started_at, ended_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT stage, attempt, output, at
		FROM run_stages WHERE run_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying stage outputs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var out domain.StageOutput
		var stage, at string
		if err := rows.Scan(&stage, &out.Attempt, &out.Output, &at); err != nil {
			return nil, fmt.Errorf("scanning stage output: %w", err)
		}
		out.Stage = domain.Stage(stage)
		out.At = parseTime(at)
		run.Outputs = append(run.Outputs, out)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stage outputs: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs first, without stage outputs.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.PipelineRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, project_name, profile, complexity, plan, artifact_path, status, review, error, started_at, ended_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.PipelineRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its stage outputs.
func (s *runStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_stages WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("deleting stage outputs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return tx.Commit()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.PipelineRun, error) {
	var run domain.PipelineRun
	var profile, plan, artifactPath, errMsg, endedAt sql.NullString
	var complexity, status, review, startedAt string

	if err := row.Scan(&run.ID, &run.ProjectName, &profile, &complexity, &plan,
		&artifactPath, &status, &review, &errMsg, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if profile.Valid {
		run.Profile = &domain.RequirementProfile{}
		if err := json.Unmarshal([]byte(profile.String), run.Profile); err != nil {
			return nil, fmt.Errorf("unmarshalling profile: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(complexity), &run.Complexity); err != nil {
		return nil, fmt.Errorf("unmarshalling complexity: %w", err)
	}
	if plan.Valid {
		run.Plan = &domain.Plan{}
		if err := json.Unmarshal([]byte(plan.String), run.Plan); err != nil {
			return nil, fmt.Errorf("unmarshalling plan: %w", err)
		}
	}

	run.ArtifactPath = artifactPath.String
	run.Status = domain.RunStatus(status)
	run.Review = domain.ReviewOutcome(review)
	run.Error = errMsg.String
	run.StartedAt = parseTime(startedAt)
	if endedAt.Valid {
		run.EndedAt = parseTime(endedAt.String)
	}

	return &run, nil
}

// marshalNullable encodes v as JSON, or returns nil for a nil pointer.
func marshalNullable[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. Fractional seconds are optional.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
