package sqlite

// Migrations returns the schema statements applied on open.
// Each string is a single statement; SQLite executes one at a time.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			login         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS admins (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			login         TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		)`,

		// Ledger rows are never updated; seq preserves insertion order.
		`CREATE TABLE IF NOT EXISTS returns (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT UNIQUE NOT NULL,
			username       TEXT NOT NULL,
			product_name   TEXT NOT NULL,
			condition      TEXT NOT NULL,
			days_used      INTEGER NOT NULL,
			score          REAL NOT NULL,
			credit         INTEGER NOT NULL,
			action         TEXT NOT NULL,
			submitted_at   TEXT NOT NULL,
			pickup_date    TEXT NOT NULL,
			pickup_time    TEXT NOT NULL,
			policy_version INTEGER NOT NULL,
			model_version  TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_returns_user ON returns(username, submitted_at DESC)`,

		`CREATE TABLE IF NOT EXISTS reward_policies (
			version    INTEGER PRIMARY KEY,
			multiplier REAL NOT NULL,
			updated_by TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
}
