package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// FileName is the sqlite file created inside the data directory
const FileName = "sustaina.db"

// DB represents the database connection with pooling
type DB struct {
	*sql.DB
	pool     *ConnectionPool
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// ConnectionPool manages database connection pooling
type ConnectionPool struct {
	db           *sql.DB
	maxOpenConns int
	maxIdleConns int
	maxLifetime  time.Duration
}

// NewConnectionPool creates a new database connection pool
func NewConnectionPool(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) *ConnectionPool {
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	return &ConnectionPool{
		db:           db,
		maxOpenConns: maxOpen,
		maxIdleConns: maxIdle,
		maxLifetime:  maxLifetime,
	}
}

// GetStats returns connection pool statistics
func (cp *ConnectionPool) GetStats() map[string]interface{} {
	stats := cp.db.Stats()

	return map[string]interface{}{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": cp.maxOpenConns,
		"max_idle_connections": cp.maxIdleConns,
		"max_lifetime_seconds": cp.maxLifetime.Seconds(),
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// NewDB opens (and migrates) the issuance log inside dataDir
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, FileName)
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// sqlite allows a single writer at a time
	pool := NewConnectionPool(db, 4, 2, 30*time.Minute)

	database := &DB{
		DB:       db,
		pool:     pool,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized",
		"path", dbPath,
		"max_open_conns", pool.maxOpenConns,
		"max_idle_conns", pool.maxIdleConns)

	return database, nil
}

func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS certificate_issuances (
			id TEXT PRIMARY KEY,
			certificate_id TEXT NOT NULL,
			organization TEXT NOT NULL,
			vessel_name TEXT NOT NULL,
			imo TEXT NOT NULL,
			ship_type TEXT NOT NULL,
			fuel_type TEXT NOT NULL,
			risk_score REAL NOT NULL,
			posture TEXT NOT NULL,
			carbon_cost REAL NOT NULL,
			valid_from DATE NOT NULL,
			valid_until DATE NOT NULL,
			validity_days INTEGER NOT NULL,
			issued_to TEXT,
			issuer TEXT,
			document_sha256 TEXT,
			document_bytes INTEGER NOT NULL DEFAULT 0,
			ip_address TEXT,
			issued_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			organization TEXT NOT NULL,
			user_name TEXT NOT NULL,
			ip_address TEXT,
			user_agent TEXT,
			created_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_issuances_certificate_id ON certificate_issuances(certificate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_issuances_issued_at ON certificate_issuances(issued_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		stmtInsertIssuance: `INSERT INTO certificate_issuances (
			id, certificate_id, organization, vessel_name, imo, ship_type, fuel_type,
			risk_score, posture, carbon_cost, valid_from, valid_until, validity_days,
			issued_to, issuer, document_sha256, document_bytes, ip_address, issued_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		stmtGetIssuances: `SELECT id, certificate_id, organization, vessel_name, imo, ship_type, fuel_type,
			risk_score, posture, carbon_cost, valid_from, valid_until, validity_days,
			issued_to, issuer, document_sha256, document_bytes, issued_at
			FROM certificate_issuances WHERE certificate_id = ? ORDER BY issued_at ASC`,

		stmtRecentIssuances: `SELECT id, certificate_id, organization, vessel_name, imo, ship_type, fuel_type,
			risk_score, posture, carbon_cost, valid_from, valid_until, validity_days,
			issued_to, issuer, document_sha256, document_bytes, issued_at
			FROM certificate_issuances ORDER BY issued_at DESC LIMIT ?`,

		stmtInsertSession: `INSERT INTO sessions (id, organization, user_name, ip_address, user_agent, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,

		stmtDeleteIssuancesBefore: `DELETE FROM certificate_issuances WHERE valid_until < ?`,

		stmtDeleteSessionsBefore: `DELETE FROM sessions WHERE expires_at < ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// GetPoolStats returns database connection pool statistics
func (db *DB) GetPoolStats() map[string]interface{} {
	return db.pool.GetStats()
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
