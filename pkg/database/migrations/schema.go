package migrations

// All returns the full migration history.
func All() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "users_and_tokens",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS users (
					id TEXT PRIMARY KEY,
					email TEXT NOT NULL UNIQUE,
					name TEXT NOT NULL,
					password_hash TEXT NOT NULL DEFAULT '',
					google_id TEXT,
					active BOOLEAN NOT NULL DEFAULT TRUE,
					last_login {{TIMESTAMP}},
					created_at {{TIMESTAMP}} NOT NULL,
					updated_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS refresh_tokens (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					token TEXT NOT NULL UNIQUE,
					expires_at {{TIMESTAMP}} NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL,
					revoked BOOLEAN NOT NULL DEFAULT FALSE,
					revoked_at {{TIMESTAMP}},
					ip_address TEXT NOT NULL DEFAULT '',
					user_agent TEXT NOT NULL DEFAULT ''
				)`,
			},
		},
		{
			Version: 2,
			Name:    "events_and_reminders",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS events (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					title TEXT NOT NULL,
					description TEXT,
					start_time {{TIMESTAMP}} NOT NULL,
					end_time {{TIMESTAMP}} NOT NULL,
					all_day BOOLEAN NOT NULL DEFAULT FALSE,
					location TEXT,
					type TEXT NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL,
					updated_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_events_user_start ON events (user_id, start_time)`,
				`CREATE TABLE IF NOT EXISTS reminders (
					id TEXT PRIMARY KEY,
					event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					remind_at {{TIMESTAMP}} NOT NULL,
					method TEXT NOT NULL,
					sent_at {{TIMESTAMP}},
					created_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (remind_at) WHERE sent_at IS NULL`,
			},
		},
		{
			Version: 3,
			Name:    "profiles_settings",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS user_profiles (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
					name TEXT NOT NULL,
					surname TEXT NOT NULL,
					age TEXT NOT NULL,
					sex TEXT NOT NULL,
					description TEXT,
					hometown TEXT NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL,
					updated_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS user_settings (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
					timezone TEXT NOT NULL,
					language TEXT NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL,
					updated_at {{TIMESTAMP}} NOT NULL
				)`,
			},
		},
		{
			Version: 4,
			Name:    "ai_interactions_chat_history",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS ai_interactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					input_text TEXT NOT NULL,
					intent TEXT,
					entities TEXT,
					response_text TEXT NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_ai_interactions_user_created ON ai_interactions (user_id, created_at)`,
				`CREATE TABLE IF NOT EXISTS chat_messages (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
					role TEXT NOT NULL,
					content TEXT NOT NULL,
					created_at {{TIMESTAMP}} NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_chat_messages_user_created ON chat_messages (user_id, created_at)`,
			},
		},
		{
			Version: 5,
			Name:    "reminder_failures",
			Statements: []string{
				`ALTER TABLE reminders ADD COLUMN failed_at {{TIMESTAMP}}`,
				`ALTER TABLE reminders ADD COLUMN last_error TEXT`,
			},
		},
	}
}
