// Package postgres implements the PostgreSQL persistence layer.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
		},
		{
			Version: 2,
			Name:    "create_checkins",
			UpSQL:   migration002Up,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    display_name VARCHAR(100) NOT NULL DEFAULT '',
    class VARCHAR(20),
    joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Class is read on every class-scoped aggregate
CREATE INDEX IF NOT EXISTS idx_users_class ON users(class) WHERE class IS NOT NULL;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE CHECKINS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create checkins table
-- Version: 002

CREATE TABLE IF NOT EXISTS checkins (
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    day DATE NOT NULL,
    habit_key VARCHAR(50) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (user_id, day, habit_key)
);

-- Window aggregates scan by day
CREATE INDEX IF NOT EXISTS idx_checkins_day ON checkins(day);

-- Per-user day lookups
CREATE INDEX IF NOT EXISTS idx_checkins_user_day ON checkins(user_id, day);
`
