package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database. The engine runs on
// SQLite by default; set DB_TYPE=postgres and DATABASE_URL to use a
// shared Postgres instance instead.
func Connect() error {
	if os.Getenv("DB_TYPE") == "postgres" {
		return connectPostgres()
	}
	return connectSQLite()
}

func connectSQLite() error {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = filepath.Join("data", "quizbrain.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %s: %v", p, err)
		}
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	DB = db
	return initializeSchema()
}

func connectPostgres() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema() error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if DB.DriverName() == "postgres" {
		idCol = "BIGSERIAL PRIMARY KEY"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS users (
				id %s,
				display_name TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS questions (
				id %s,
				text TEXT NOT NULL,
				normalized_text TEXT NOT NULL UNIQUE,
				options TEXT NOT NULL,
				correct_index INTEGER NOT NULL,
				explanation TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT '',
				hint TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS user_question_progress (
				id %s,
				user_id INTEGER NOT NULL,
				question_id INTEGER NOT NULL,
				times_shown INTEGER NOT NULL DEFAULT 0,
				times_correct INTEGER NOT NULL DEFAULT 0,
				last_shown_at TIMESTAMP NOT NULL,
				ease_factor REAL NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (question_id) REFERENCES questions(id),
				UNIQUE(user_id, question_id)
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS question_attempts (
				id %s,
				user_id INTEGER NOT NULL,
				question_id INTEGER NOT NULL,
				is_correct BOOLEAN NOT NULL,
				time_taken_seconds REAL NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (question_id) REFERENCES questions(id)
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS study_sessions (
				id %s,
				public_id TEXT NOT NULL UNIQUE,
				user_id INTEGER NOT NULL,
				session_type TEXT NOT NULL,
				started_at TIMESTAMP NOT NULL,
				ended_at TIMESTAMP,
				questions_answered INTEGER NOT NULL DEFAULT 0,
				questions_correct INTEGER NOT NULL DEFAULT 0,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			)
		`, idCol),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS unlocked_achievements (
				id %s,
				user_id INTEGER NOT NULL,
				achievement_id TEXT NOT NULL,
				unlocked_at TIMESTAMP NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				UNIQUE(user_id, achievement_id)
			)
		`, idCol),
		`CREATE INDEX IF NOT EXISTS idx_attempts_user_created ON question_attempts(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user ON user_question_progress(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
