// Package postgres implements the PostgreSQL persistence layer.
package postgres

import (
	"context"

	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/shared"
	"github.com/ecohabit-hub/ecohabit-bot/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

// Upsert registers a user or refreshes the display name.
// Class and joined_at are never touched on conflict; an empty display
// name keeps the stored one.
func (r *UserRepository) Upsert(ctx context.Context, id user.ID, displayName string) error {
	query := `
		INSERT INTO users (id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			display_name = CASE
				WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name
				ELSE users.display_name
			END
	`

	_, err := r.conn.Exec(ctx, query, int64(id), displayName)
	if err != nil {
		return shared.WrapError("user", "Upsert", shared.ErrStorageFault, "failed to upsert user", err)
	}

	return nil
}

// SetClass assigns or replaces the user's class.
func (r *UserRepository) SetClass(ctx context.Context, id user.ID, class user.Class) error {
	query := `UPDATE users SET class = $1 WHERE id = $2`

	result, err := r.conn.Exec(ctx, query, class.String(), int64(id))
	if err != nil {
		return shared.WrapError("user", "SetClass", shared.ErrStorageFault, "failed to set class", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// GetClass returns the user's class. ok=false when the user is unknown
// or has not picked a class yet.
func (r *UserRepository) GetClass(ctx context.Context, id user.ID) (user.Class, bool, error) {
	query := `SELECT class FROM users WHERE id = $1`

	var class *string
	err := r.conn.QueryRow(ctx, query, int64(id)).Scan(&class)
	if err != nil {
		if IsNoRows(err) {
			return user.None, false, nil
		}
		return user.None, false, shared.WrapError("user", "GetClass", shared.ErrStorageFault, "failed to get class", err)
	}

	if class == nil || *class == "" {
		return user.None, false, nil
	}

	return user.Class(*class), true, nil
}

// Get returns a user by ID.
func (r *UserRepository) Get(ctx context.Context, id user.ID) (*user.User, error) {
	query := `SELECT id, display_name, class, joined_at FROM users WHERE id = $1`

	var (
		u     user.User
		rawID int64
		class *string
	)
	err := r.conn.QueryRow(ctx, query, int64(id)).Scan(&rawID, &u.DisplayName, &class, &u.JoinedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, shared.WrapError("user", "Get", shared.ErrStorageFault, "failed to get user", err)
	}

	u.ID = user.ID(rawID)
	if class != nil {
		u.Class = user.Class(*class)
	}

	return &u, nil
}

// ListIDs returns user IDs within the scope, ordered by ID.
// The scope is bound as a nullable parameter, never concatenated into SQL.
func (r *UserRepository) ListIDs(ctx context.Context, scope user.Scope) ([]user.ID, error) {
	query := `
		SELECT id FROM users
		WHERE $1::text IS NULL OR class = $1
		ORDER BY id
	`

	rows, err := r.conn.Query(ctx, query, scopeArg(scope))
	if err != nil {
		return nil, shared.WrapError("user", "ListIDs", shared.ErrStorageFault, "failed to list users", err)
	}
	defer rows.Close()

	var ids []user.ID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, shared.WrapError("user", "ListIDs", shared.ErrStorageFault, "failed to scan user id", err)
		}
		ids = append(ids, user.ID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, shared.WrapError("user", "ListIDs", shared.ErrStorageFault, "failed to read user ids", err)
	}

	return ids, nil
}

// Count returns the number of users within the scope.
// The school-wide scope counts users without a class too.
func (r *UserRepository) Count(ctx context.Context, scope user.Scope) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE $1::text IS NULL OR class = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, scopeArg(scope)).Scan(&count); err != nil {
		return 0, shared.WrapError("user", "Count", shared.ErrStorageFault, "failed to count users", err)
	}

	return count, nil
}

// scopeArg converts a scope into a nullable SQL parameter.
func scopeArg(scope user.Scope) interface{} {
	if class, ok := scope.Class(); ok {
		return class.String()
	}
	return nil
}
