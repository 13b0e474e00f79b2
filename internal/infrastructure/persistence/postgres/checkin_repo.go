// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/checkin"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK-IN REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CheckinRepository implements checkin.Repository for PostgreSQL.
type CheckinRepository struct {
	conn *Connection
}

// NewCheckinRepository creates a new CheckinRepository.
func NewCheckinRepository(conn *Connection) *CheckinRepository {
	return &CheckinRepository{conn: conn}
}

// SetMark inserts or removes one mark. Both directions are idempotent:
// inserting an existing mark and deleting a missing one are no-ops.
func (r *CheckinRepository) SetMark(ctx context.Context, id user.ID, day checkin.Day, habitKey string, present bool) error {
	if present {
		query := `
			INSERT INTO checkins (user_id, day, habit_key)
			VALUES ($1, $2::date, $3)
			ON CONFLICT (user_id, day, habit_key) DO NOTHING
		`
		if _, err := r.conn.Exec(ctx, query, int64(id), day.String(), habitKey); err != nil {
			// FK failure means the user never sent /start.
			if IsForeignKeyViolation(err) {
				return shared.WrapError("checkin", "SetMark", shared.ErrNotFound, "user is not registered", err)
			}
			return shared.WrapError("checkin", "SetMark", shared.ErrStorageFault, "failed to insert mark", err)
		}
		return nil
	}

	query := `DELETE FROM checkins WHERE user_id = $1 AND day = $2::date AND habit_key = $3`
	if _, err := r.conn.Exec(ctx, query, int64(id), day.String(), habitKey); err != nil {
		return shared.WrapError("checkin", "SetMark", shared.ErrStorageFault, "failed to delete mark", err)
	}

	return nil
}

// DayMarks returns the habit keys the user marked on the given day.
func (r *CheckinRepository) DayMarks(ctx context.Context, id user.ID, day checkin.Day) (checkin.DaySet, error) {
	query := `SELECT habit_key FROM checkins WHERE user_id = $1 AND day = $2::date`

	rows, err := r.conn.Query(ctx, query, int64(id), day.String())
	if err != nil {
		return nil, shared.WrapError("checkin", "DayMarks", shared.ErrStorageFault, "failed to query day marks", err)
	}
	defer rows.Close()

	marks := make(checkin.DaySet)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, shared.WrapError("checkin", "DayMarks", shared.ErrStorageFault, "failed to scan mark", err)
		}
		marks[key] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("checkin", "DayMarks", shared.ErrStorageFault, "failed to read marks", err)
	}

	return marks, nil
}

// UserStats returns one user's aggregates. Totals and the per-habit
// breakdown are read in one read-only transaction so they agree.
func (r *CheckinRepository) UserStats(ctx context.Context, id user.ID) (*checkin.UserStats, error) {
	stats := &checkin.UserStats{}

	err := r.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		totalsQuery := `
			SELECT COUNT(*), COUNT(DISTINCT day)
			FROM checkins
			WHERE user_id = $1
		`
		if err := tx.QueryRow(ctx, totalsQuery, int64(id)).Scan(&stats.TotalMarks, &stats.ActiveDays); err != nil {
			return err
		}

		perHabitQuery := `
			SELECT habit_key, COUNT(*) AS cnt
			FROM checkins
			WHERE user_id = $1
			GROUP BY habit_key
			ORDER BY cnt DESC, habit_key
		`
		rows, err := tx.Query(ctx, perHabitQuery, int64(id))
		if err != nil {
			return err
		}
		defer rows.Close()

		perHabit, err := scanHabitCounts(rows)
		if err != nil {
			return err
		}
		stats.PerHabit = perHabit
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("checkin", "UserStats", shared.ErrStorageFault, "failed to aggregate user stats", err)
	}

	return stats, nil
}

// ScopeStats returns aggregates for one class or the whole school.
// The scope is bound as a nullable parameter into a fixed query; the
// school-wide member count includes users without a class.
func (r *CheckinRepository) ScopeStats(ctx context.Context, scope user.Scope) (*checkin.ScopeStats, error) {
	stats := &checkin.ScopeStats{}
	arg := scopeArg(scope)

	err := r.conn.WithTx(ctx, ReadOnlyTxOptions(), func(tx pgx.Tx) error {
		totalsQuery := `
			SELECT
				(SELECT COUNT(*) FROM users WHERE $1::text IS NULL OR class = $1),
				COUNT(c.user_id),
				COUNT(DISTINCT c.day)
			FROM checkins c
			JOIN users u ON u.id = c.user_id
			WHERE $1::text IS NULL OR u.class = $1
		`
		if err := tx.QueryRow(ctx, totalsQuery, arg).Scan(&stats.Members, &stats.TotalMarks, &stats.ActiveDays); err != nil {
			return err
		}

		perHabitQuery := `
			SELECT c.habit_key, COUNT(*) AS cnt
			FROM checkins c
			JOIN users u ON u.id = c.user_id
			WHERE $1::text IS NULL OR u.class = $1
			GROUP BY c.habit_key
			ORDER BY cnt DESC, c.habit_key
		`
		rows, err := tx.Query(ctx, perHabitQuery, arg)
		if err != nil {
			return err
		}
		defer rows.Close()

		perHabit, err := scanHabitCounts(rows)
		if err != nil {
			return err
		}
		stats.PerHabit = perHabit
		return nil
	})
	if err != nil {
		return nil, shared.WrapError("checkin", "ScopeStats", shared.ErrStorageFault, "failed to aggregate scope stats", err)
	}

	return stats, nil
}

// MostActiveClass returns the class with the most marks across the given
// days. Users without a class are not counted. Ties go to the first row
// in query order.
func (r *CheckinRepository) MostActiveClass(ctx context.Context, days []checkin.Day) (user.Class, int, error) {
	if len(days) == 0 {
		return user.None, 0, nil
	}

	dayStrings := make([]string, len(days))
	for i, d := range days {
		dayStrings[i] = d.String()
	}

	query := `
		SELECT u.class, COUNT(*) AS cnt
		FROM checkins c
		JOIN users u ON u.id = c.user_id
		WHERE u.class IS NOT NULL AND c.day = ANY($1::date[])
		GROUP BY u.class
		ORDER BY cnt DESC
		LIMIT 1
	`

	var (
		class string
		count int
	)
	err := r.conn.QueryRow(ctx, query, dayStrings).Scan(&class, &count)
	if err != nil {
		if IsNoRows(err) {
			return user.None, 0, nil
		}
		return user.None, 0, shared.WrapError("checkin", "MostActiveClass", shared.ErrStorageFault, "failed to aggregate window", err)
	}

	return user.Class(class), count, nil
}

// scanHabitCounts reads (habit_key, count) rows into a slice.
func scanHabitCounts(rows pgx.Rows) ([]checkin.HabitCount, error) {
	var out []checkin.HabitCount
	for rows.Next() {
		var hc checkin.HabitCount
		if err := rows.Scan(&hc.Key, &hc.Count); err != nil {
			return nil, err
		}
		out = append(out, hc)
	}
	return out, rows.Err()
}
