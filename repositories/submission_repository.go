package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/beachpoint/portal/models"
)

var ErrOutcomeStatusInvalid = errors.New("submission outcome status violates the journal constraint")

// SubmissionJournal persists per-category submission outcomes so a retry can
// resubmit only the failed subset. The backend's idempotency on duplicate
// submissions is unverified, so succeeded categories are never resubmitted.
// Rows exist only for submissions whose tournament registration went through:
// a non-empty journal for (player, tournament) means step 1 already succeeded.
type SubmissionJournal interface {
	RecordOutcome(ctx context.Context, playerID, tournamentID int, outcome models.CategoryOutcome) error
	ListOutcomes(ctx context.Context, playerID, tournamentID int) ([]models.CategoryOutcome, error)
}

type postgresSubmissionJournal struct {
	db *sql.DB
}

func NewPostgresSubmissionJournal(db *sql.DB) SubmissionJournal {
	return &postgresSubmissionJournal{db: db}
}

func (r *postgresSubmissionJournal) RecordOutcome(ctx context.Context, playerID, tournamentID int, outcome models.CategoryOutcome) error {
	query := `
		INSERT INTO submission_outcomes (player_id, tournament_id, category_id, category_name, status, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (player_id, tournament_id, category_id)
		DO UPDATE SET status = EXCLUDED.status, message = EXCLUDED.message, recorded_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		playerID,
		tournamentID,
		outcome.CategoryID,
		outcome.CategoryName,
		outcome.Status,
		outcome.Message,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23514" && pqErr.Constraint == "submission_outcomes_status_check" { // check_violation
				return ErrOutcomeStatusInvalid
			}
		}
		return fmt.Errorf("failed to record submission outcome: %w", err)
	}
	return nil
}

func (r *postgresSubmissionJournal) ListOutcomes(ctx context.Context, playerID, tournamentID int) ([]models.CategoryOutcome, error) {
	query := `
		SELECT category_id, category_name, status, message, recorded_at
		FROM submission_outcomes
		WHERE player_id = $1 AND tournament_id = $2
		ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submission outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]models.CategoryOutcome, 0)
	for rows.Next() {
		var o models.CategoryOutcome
		if err := rows.Scan(&o.CategoryID, &o.CategoryName, &o.Status, &o.Message, &o.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission outcome row: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission outcome rows: %w", err)
	}
	return outcomes, nil
}
