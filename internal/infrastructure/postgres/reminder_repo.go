package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosepilot/reminder-service/internal/domain"
	"github.com/dosepilot/reminder-service/internal/repository"
)

type ReminderRepository struct {
	pool *pgxpool.Pool
}

func NewReminderRepository(pool *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{pool: pool}
}

// ReplaceSet swaps the user's stored medications and reminders in one
// transaction. Reminders reference medications by FK, so medications go in
// first and come out last.
func (r *ReminderRepository) ReplaceSet(ctx context.Context, userID string, set repository.ReminderSet) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace set: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reminders WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear reminders: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM medications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear medications: %w", err)
	}

	for _, m := range set.Medications {
		_, err := tx.Exec(ctx, `
			INSERT INTO medications (id, user_id, name, dosage, units, color, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			m.ID, userID, m.Name, m.Dosage, m.Units, m.Color, m.StartDate, m.EndDate,
		)
		if err != nil {
			return fmt.Errorf("insert medication %s: %w", m.ID, err)
		}
	}

	for _, rem := range set.Reminders {
		_, err := tx.Exec(ctx, `
			INSERT INTO reminders (id, user_id, medication_id, time_of_day, days, enabled, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			rem.ID, userID, rem.MedicationID, rem.Time, rem.Days, rem.Enabled, rem.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert reminder %s: %w", rem.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace set: %w", err)
	}
	return nil
}

func (r *ReminderRepository) GetSet(ctx context.Context, userID string) (repository.ReminderSet, error) {
	var set repository.ReminderSet

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, dosage, units, color, start_date, end_date, created_at
		FROM medications WHERE user_id = $1`, userID)
	if err != nil {
		return set, fmt.Errorf("query medications: %w", err)
	}
	set.Medications, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Medication, error) {
		var m domain.Medication
		err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Units, &m.Color, &m.StartDate, &m.EndDate, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return set, fmt.Errorf("scan medications: %w", err)
	}

	rows, err = r.pool.Query(ctx, `
		SELECT id, user_id, medication_id, time_of_day, days, enabled, notes, created_at
		FROM reminders WHERE user_id = $1`, userID)
	if err != nil {
		return set, fmt.Errorf("query reminders: %w", err)
	}
	set.Reminders, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Reminder, error) {
		var rem domain.Reminder
		err := row.Scan(&rem.ID, &rem.UserID, &rem.MedicationID, &rem.Time, &rem.Days, &rem.Enabled, &rem.Notes, &rem.CreatedAt)
		return rem, err
	})
	if err != nil {
		return set, fmt.Errorf("scan reminders: %w", err)
	}

	return set, nil
}

func (r *ReminderRepository) DeleteReminder(ctx context.Context, userID, reminderID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM reminders WHERE user_id = $1 AND id = $2`, userID, reminderID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) DeleteSet(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete set: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM reminders WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete reminders: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM medications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete medications: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete set: %w", err)
	}
	return nil
}

func (r *ReminderRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM reminders WHERE enabled = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("list reminder users: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan reminder users: %w", err)
	}
	return ids, nil
}
