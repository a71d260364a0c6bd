// Package store persists compliance results to PostgreSQL and serves the
// aggregate statistics the dashboard and CLI report on.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pharmwatch/icsr-sentinel/internal/compliance"
	"github.com/pharmwatch/icsr-sentinel/internal/config"
	"github.com/pharmwatch/icsr-sentinel/internal/logger"
	"go.uber.org/zap"
)

// Store handles compliance-result persistence in PostgreSQL.
type Store struct {
	db     *sqlx.DB
	logger *logger.Logger
}

// schema is applied on startup. Statements are idempotent so restarts are
// safe.
const schema = `
CREATE TABLE IF NOT EXISTS compliance_results (
	id                  BIGSERIAL PRIMARY KEY,
	document_name       TEXT        NOT NULL,
	format              TEXT        NOT NULL,
	overall_score       DOUBLE PRECISION NOT NULL,
	level               TEXT        NOT NULL,
	masking_score       DOUBLE PRECISION NOT NULL,
	minimization_score  DOUBLE PRECISION NOT NULL,
	structure_score     DOUBLE PRECISION NOT NULL,
	personal_data_count INTEGER     NOT NULL,
	mask_applied_count  INTEGER     NOT NULL,
	issue_count         INTEGER     NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS compliance_issues (
	id        BIGSERIAL PRIMARY KEY,
	result_id BIGINT NOT NULL REFERENCES compliance_results(id) ON DELETE CASCADE,
	issue     TEXT   NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_compliance_results_level ON compliance_results(level);
CREATE INDEX IF NOT EXISTS idx_compliance_issues_issue ON compliance_issues(issue);
`

// Statistics aggregates the stored results.
type Statistics struct {
	TotalFiles        int            `json:"totalFiles"`
	FilesWithIssues   int            `json:"filesWithIssues"`
	AvgScore          float64        `json:"avgScore"`
	TotalPersonalData int            `json:"totalPersonalData"`
	LevelDistribution map[string]int `json:"levelDistribution"`
	CommonIssues      []IssueCount   `json:"commonIssues"`
}

// IssueCount is one issue string with its occurrence count.
type IssueCount struct {
	Issue string `json:"issue" db:"issue"`
	Count int    `json:"count" db:"count"`
}

// NewStore connects to PostgreSQL and ensures the schema exists.
func NewStore(cfg config.StoreConfig, log *logger.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	s := &Store{
		db:     db,
		logger: log.WithComponent("store"),
	}

	if err := s.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	s.logger.Info("result store initialized",
		zap.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
	)

	return s, nil
}

// initialize verifies the connection and applies the schema.
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}

// SaveResult persists one compliance result with its issues.
func (s *Store) SaveResult(ctx context.Context, documentName, format string, r *compliance.Result) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var resultID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO compliance_results (
			document_name, format, overall_score, level,
			masking_score, minimization_score, structure_score,
			personal_data_count, mask_applied_count, issue_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		documentName, format, r.OverallScore, string(r.Level),
		r.MaskingScore, r.MinimizationScore, r.StructureScore,
		r.PersonalDataCount, r.MaskAppliedCount, len(r.Issues),
	).Scan(&resultID)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	for _, issue := range r.Issues {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO compliance_issues (result_id, issue) VALUES ($1, $2)`,
			resultID, issue); err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}

	s.logger.Debug("result saved",
		zap.Int64("id", resultID),
		zap.String("document", documentName),
		zap.Float64("score", r.OverallScore),
	)

	return nil
}

// GetStatistics aggregates every stored result.
func (s *Store) GetStatistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{
		LevelDistribution: map[string]int{},
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE issue_count > 0),
		       COALESCE(AVG(overall_score), 0),
		       COALESCE(SUM(personal_data_count), 0)
		FROM compliance_results`,
	).Scan(&stats.TotalFiles, &stats.FilesWithIssues, &stats.AvgScore, &stats.TotalPersonalData)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate results: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT level, COUNT(*) FROM compliance_results GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("failed to query level distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan level distribution: %w", err)
		}
		stats.LevelDistribution[level] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read level distribution: %w", err)
	}

	if err := s.db.SelectContext(ctx, &stats.CommonIssues, `
		SELECT issue, COUNT(*) AS count
		FROM compliance_issues
		GROUP BY issue
		ORDER BY count DESC
		LIMIT 10`); err != nil {
		return nil, fmt.Errorf("failed to query common issues: %w", err)
	}

	return stats, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks credentials in a database URL for logging.
func maskDatabaseURL(url string) string {
	if !strings.Contains(url, "@") {
		return url
	}
	parts := strings.SplitN(url, "@", 2)
	if idx := strings.LastIndex(parts[0], ":"); idx > strings.Index(parts[0], "//") {
		parts[0] = parts[0][:idx+1] + "***"
	}
	return parts[0] + "@" + parts[1]
}
