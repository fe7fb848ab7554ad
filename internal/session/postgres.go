package session

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps session tokens in PostgreSQL via database/sql
type PostgresStore struct {
	conn *sql.DB
}

func NewPostgresStore(host, port, user, password, dbname, sslmode string) (*PostgresStore, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	store := &PostgresStore{conn: conn}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS console_sessions (
		session_id VARCHAR(64) PRIMARY KEY,
		token TEXT NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_console_sessions_expires_at ON console_sessions(expires_at);
	`
	_, err := s.conn.Exec(query)
	return err
}

func (s *PostgresStore) Get(sessionID string) (string, error) {
	var token string
	var expiresAt time.Time
	err := s.conn.QueryRow(
		`SELECT token, expires_at FROM console_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&token, &expiresAt)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if time.Now().After(expiresAt) {
		_, _ = s.conn.Exec(`DELETE FROM console_sessions WHERE session_id = $1`, sessionID)
		return "", nil
	}
	return token, nil
}

func (s *PostgresStore) Put(sessionID, token string, ttl time.Duration) error {
	query := `
	INSERT INTO console_sessions (session_id, token, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (session_id) DO UPDATE SET
		token = EXCLUDED.token,
		expires_at = EXCLUDED.expires_at,
		updated_at = NOW()
	`
	_, err := s.conn.Exec(query, sessionID, token, time.Now().Add(ttl))
	return err
}

func (s *PostgresStore) Delete(sessionID string) error {
	_, err := s.conn.Exec(`DELETE FROM console_sessions WHERE session_id = $1`, sessionID)
	return err
}

func (s *PostgresStore) DeleteExpired() (int, error) {
	result, err := s.conn.Exec(`DELETE FROM console_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()
	return int(removed), nil
}

func (s *PostgresStore) Close() error {
	return s.conn.Close()
}
