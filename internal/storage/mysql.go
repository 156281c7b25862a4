package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"shcompat/internal/domain"
)

// ErrNoDSN is returned when run history is requested without a DSN.
var ErrNoDSN = errors.New("results DSN is empty")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS suite_runs (
		id          CHAR(36)     NOT NULL PRIMARY KEY,
		suite_name  VARCHAR(255) NOT NULL,
		started_at  DATETIME(3)  NOT NULL,
		total       INT          NOT NULL,
		passed      INT          NOT NULL,
		failed      INT          NOT NULL,
		timeout     INT          NOT NULL,
		error       INT          NOT NULL,
		duration_s  DOUBLE       NOT NULL,
		INDEX idx_suite_runs_suite (suite_name, started_at)
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		run_id      CHAR(36)     NOT NULL,
		position    INT          NOT NULL,
		name        VARCHAR(255) NOT NULL,
		status      VARCHAR(16)  NOT NULL,
		duration_s  DOUBLE       NOT NULL,
		output      MEDIUMTEXT   NOT NULL,
		error       MEDIUMTEXT   NOT NULL,
		PRIMARY KEY (run_id, position),
		CONSTRAINT fk_test_results_run FOREIGN KEY (run_id) REFERENCES suite_runs (id) ON DELETE CASCADE
	)`,
}

// MySQLStore records suite runs in MySQL
type MySQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NormalizeDSN validates a go-sql-driver DSN and enables the options the
// store relies on.
func NormalizeDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", ErrNoDSN
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse results DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("results DSN must name a database")
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// OpenMySQL connects to dsn and makes sure the history tables exist
func OpenMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping results database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create results tables: %w", err)
		}
	}
	return &MySQLStore{db: db, now: time.Now}, nil
}

// Save writes one run and all of its tests in a single transaction and
// returns the run id.
func (s *MySQLStore) Save(ctx context.Context, suite *domain.SuiteResult) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO suite_runs (id, suite_name, started_at, total, passed, failed, timeout, error, duration_s)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, suite.SuiteName, s.now().UTC().Add(-suite.Duration),
		suite.Total, suite.Passed, suite.Failed, suite.Timeout, suite.Error, suite.Duration.Seconds(),
	)
	if err != nil {
		return "", fmt.Errorf("insert suite run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO test_results (run_id, position, name, status, duration_s, output, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare test insert: %w", err)
	}
	defer stmt.Close()

	for i, test := range suite.Tests {
		if _, err := stmt.ExecContext(ctx, runID, i, test.Name, test.Status.String(),
			test.Duration.Seconds(), test.Output, test.Error); err != nil {
			return "", fmt.Errorf("insert test %s: %w", test.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// LoadRun reads a recorded run back as a suite result
func (s *MySQLStore) LoadRun(ctx context.Context, runID string) (*domain.SuiteResult, error) {
	var (
		name     string
		duration float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT suite_name, duration_s FROM suite_runs WHERE id = ?`, runID).Scan(&name, &duration)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, status, duration_s, output, error FROM test_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("load tests of run %s: %w", runID, err)
	}
	defer rows.Close()

	var tests []domain.TestResult
	for rows.Next() {
		var (
			test    domain.TestResult
			status  string
			seconds float64
		)
		if err := rows.Scan(&test.Name, &status, &seconds, &test.Output, &test.Error); err != nil {
			return nil, fmt.Errorf("scan test row: %w", err)
		}
		if test.Status, err = domain.ParseStatus(status); err != nil {
			return nil, err
		}
		test.Duration = time.Duration(seconds * float64(time.Second))
		tests = append(tests, test)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read test rows: %w", err)
	}

	return domain.NewSuiteResult(name, tests, time.Duration(duration*float64(time.Second))), nil
}

// Close closes the database handle
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
