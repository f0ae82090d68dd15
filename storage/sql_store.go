package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

// Dialect selects placeholder style and schema for a SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SQLStore persists opportunities and portfolio summaries to PostgreSQL or SQLite.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *utils.Logger
}

// OpenPostgres connects to PostgreSQL, retrying the initial ping while the server
// comes up.
func OpenPostgres(ctx context.Context, dsn string, logger *utils.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.DoContext(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &SQLStore{db: db, dialect: Postgres, logger: logger}, nil
}

// OpenSQLite opens a SQLite database at path and configures WAL mode.
func OpenSQLite(path string, logger *utils.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLStore{db: db, dialect: SQLite, logger: logger}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	property_id       TEXT PRIMARY KEY,
	title             TEXT             NOT NULL DEFAULT '',
	area              TEXT             NOT NULL DEFAULT '',
	city              TEXT             NOT NULL DEFAULT '',
	country           TEXT             NOT NULL DEFAULT '',
	property_type     VARCHAR(20)      NOT NULL DEFAULT '',
	currency          VARCHAR(3)       NOT NULL DEFAULT '',
	price             BIGINT           NOT NULL,
	size_sqft         DOUBLE PRECISION NOT NULL,
	bedrooms          INTEGER          NOT NULL DEFAULT 0,
	bathrooms         INTEGER          NOT NULL DEFAULT 0,
	price_per_sqft    DOUBLE PRECISION NOT NULL DEFAULT 0,
	market_value      DOUBLE PRECISION NOT NULL DEFAULT 0,
	roi_percent       DOUBLE PRECISION NOT NULL DEFAULT 0,
	roi_potential     TEXT             NOT NULL DEFAULT '',
	investment_grade  TEXT             NOT NULL DEFAULT '',
	opportunity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	risk_level        TEXT             NOT NULL DEFAULT '',
	key_insights      TEXT             NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_opportunities_score ON opportunities(opportunity_score);
CREATE INDEX IF NOT EXISTS idx_opportunities_area  ON opportunities(area);
CREATE INDEX IF NOT EXISTS idx_opportunities_price ON opportunities(price);

CREATE TABLE IF NOT EXISTS portfolio_summaries (
	id                        SERIAL PRIMARY KEY,
	total_opportunities       INTEGER          NOT NULL,
	avg_opportunity_score     DOUBLE PRECISION NOT NULL,
	top_10_percent_threshold  DOUBLE PRECISION NOT NULL,
	avg_price                 DOUBLE PRECISION NOT NULL,
	median_price              DOUBLE PRECISION NOT NULL,
	grade_distribution        TEXT             NOT NULL,
	area_distribution         TEXT             NOT NULL,
	exceptional_opportunities INTEGER          NOT NULL,
	excellent_opportunities   INTEGER          NOT NULL,
	good_opportunities        INTEGER          NOT NULL,
	created_at                TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);
`

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS opportunities (
	property_id       TEXT PRIMARY KEY,
	title             TEXT    NOT NULL DEFAULT '',
	area              TEXT    NOT NULL DEFAULT '',
	city              TEXT    NOT NULL DEFAULT '',
	country           TEXT    NOT NULL DEFAULT '',
	property_type     TEXT    NOT NULL DEFAULT '',
	currency          TEXT    NOT NULL DEFAULT '',
	price             INTEGER NOT NULL,
	size_sqft         REAL    NOT NULL,
	bedrooms          INTEGER NOT NULL DEFAULT 0,
	bathrooms         INTEGER NOT NULL DEFAULT 0,
	price_per_sqft    REAL    NOT NULL DEFAULT 0,
	market_value      REAL    NOT NULL DEFAULT 0,
	roi_percent       REAL    NOT NULL DEFAULT 0,
	roi_potential     TEXT    NOT NULL DEFAULT '',
	investment_grade  TEXT    NOT NULL DEFAULT '',
	opportunity_score REAL    NOT NULL DEFAULT 0,
	risk_level        TEXT    NOT NULL DEFAULT '',
	key_insights      TEXT    NOT NULL DEFAULT '[]',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_opportunities_score ON opportunities(opportunity_score);
CREATE INDEX IF NOT EXISTS idx_opportunities_area  ON opportunities(area);
CREATE INDEX IF NOT EXISTS idx_opportunities_price ON opportunities(price);

CREATE TABLE IF NOT EXISTS portfolio_summaries (
	id                        INTEGER PRIMARY KEY AUTOINCREMENT,
	total_opportunities       INTEGER NOT NULL,
	avg_opportunity_score     REAL    NOT NULL,
	top_10_percent_threshold  REAL    NOT NULL,
	avg_price                 REAL    NOT NULL,
	median_price              REAL    NOT NULL,
	grade_distribution        TEXT    NOT NULL,
	area_distribution         TEXT    NOT NULL,
	exceptional_opportunities INTEGER NOT NULL,
	excellent_opportunities   INTEGER NOT NULL,
	good_opportunities        INTEGER NOT NULL,
	created_at                DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// Migrate creates the schema if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	ddl := sqliteMigration
	if s.dialect == Postgres {
		ddl = postgresMigration
	}
	_, err := s.db.ExecContext(ctx, ddl)
	return eris.Wrapf(err, "%s: migrate", s.dialect)
}

func (s *SQLStore) clear(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM opportunities"); err != nil {
		return eris.Wrapf(err, "%s: clear", s.dialect)
	}
	return nil
}

const opportunityColumns = 19

// WriteOpportunities replaces the stored opportunities with opps in one transaction.
// Rows are inserted in batches; duplicate property IDs keep the first row.
// An empty opps still clears the previous run.
func (s *SQLStore) WriteOpportunities(ctx context.Context, opps []models.InvestmentOpportunity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrapf(err, "%s: begin", s.dialect)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.clear(ctx, tx); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(opps); i += batchSize {
		end := min(i+batchSize, len(opps))
		if err := s.insertBatch(ctx, tx, opps[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrapf(err, "%s: commit", s.dialect)
	}
	s.logger.Info("[storage] Wrote %d opportunities to %s", len(opps), s.dialect)
	return nil
}

func (s *SQLStore) insertBatch(ctx context.Context, tx *sql.Tx, batch []models.InvestmentOpportunity) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*opportunityColumns)

	for idx, o := range batch {
		base := idx * opportunityColumns
		ph := make([]string, opportunityColumns)
		for c := range ph {
			ph[c] = s.dialect.placeholder(base + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		insights, err := json.Marshal(nonNil(o.KeyInsights))
		if err != nil {
			return eris.Wrapf(err, "%s: encode insights for %s", s.dialect, o.PropertyID)
		}
		valueArgs = append(valueArgs,
			o.PropertyID, o.Title, o.Area, o.City, o.Country, string(o.PropertyType), o.Currency,
			o.Price, o.SizeSqft, o.Bedrooms, o.Bathrooms, o.PricePerSqft, o.MarketValue,
			o.ROIPercent, o.ROIPotential, o.InvestmentGrade, o.OpportunityScore, o.RiskLevel,
			string(insights))
	}

	query := fmt.Sprintf(`
		INSERT INTO opportunities (
			property_id, title, area, city, country, property_type, currency,
			price, size_sqft, bedrooms, bathrooms, price_per_sqft, market_value,
			roi_percent, roi_potential, investment_grade, opportunity_score, risk_level,
			key_insights)
		VALUES %s
		ON CONFLICT (property_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return eris.Wrapf(err, "%s: insert opportunities", s.dialect)
	}
	return nil
}

// FetchOpportunities returns stored opportunities, highest score first.
func (s *SQLStore) FetchOpportunities(ctx context.Context) ([]models.InvestmentOpportunity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT property_id, title, area, city, country, property_type, currency,
			price, size_sqft, bedrooms, bathrooms, price_per_sqft, market_value,
			roi_percent, roi_potential, investment_grade, opportunity_score, risk_level,
			key_insights
		FROM opportunities
		ORDER BY opportunity_score DESC, property_id
	`)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: fetch opportunities", s.dialect)
	}
	defer rows.Close()

	opps := []models.InvestmentOpportunity{}
	for rows.Next() {
		var (
			o        models.InvestmentOpportunity
			pt       string
			insights string
		)
		if err := rows.Scan(
			&o.PropertyID, &o.Title, &o.Area, &o.City, &o.Country, &pt, &o.Currency,
			&o.Price, &o.SizeSqft, &o.Bedrooms, &o.Bathrooms, &o.PricePerSqft, &o.MarketValue,
			&o.ROIPercent, &o.ROIPotential, &o.InvestmentGrade, &o.OpportunityScore, &o.RiskLevel,
			&insights,
		); err != nil {
			return nil, eris.Wrapf(err, "%s: scan opportunity", s.dialect)
		}
		o.PropertyType = models.ParsePropertyType(pt)
		if err := json.Unmarshal([]byte(insights), &o.KeyInsights); err != nil {
			return nil, eris.Wrapf(err, "%s: decode insights for %s", s.dialect, o.PropertyID)
		}
		opps = append(opps, o)
	}
	return opps, eris.Wrapf(rows.Err(), "%s: iterate opportunities", s.dialect)
}

// WriteSummary appends a portfolio summary snapshot.
func (s *SQLStore) WriteSummary(ctx context.Context, sum models.PortfolioSummary) error {
	grades, err := json.Marshal(sum.GradeDistribution)
	if err != nil {
		return eris.Wrapf(err, "%s: encode grade distribution", s.dialect)
	}
	areas, err := json.Marshal(sum.AreaDistribution)
	if err != nil {
		return eris.Wrapf(err, "%s: encode area distribution", s.dialect)
	}

	ph := make([]string, 10)
	for i := range ph {
		ph[i] = s.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf(`
		INSERT INTO portfolio_summaries (
			total_opportunities, avg_opportunity_score, top_10_percent_threshold,
			avg_price, median_price, grade_distribution, area_distribution,
			exceptional_opportunities, excellent_opportunities, good_opportunities)
		VALUES (%s)
	`, strings.Join(ph, ","))

	_, err = s.db.ExecContext(ctx, query,
		sum.TotalOpportunities, sum.AvgOpportunityScore, sum.Top10PercentThreshold,
		sum.AvgPrice, sum.MedianPrice, string(grades), string(areas),
		sum.Exceptional, sum.Excellent, sum.Good)
	return eris.Wrapf(err, "%s: insert summary", s.dialect)
}

// LatestSummary returns the most recently written summary.
// ok is false when none has been written.
func (s *SQLStore) LatestSummary(ctx context.Context) (sum models.PortfolioSummary, ok bool, err error) {
	var grades, areas string
	err = s.db.QueryRowContext(ctx, `
		SELECT total_opportunities, avg_opportunity_score, top_10_percent_threshold,
			avg_price, median_price, grade_distribution, area_distribution,
			exceptional_opportunities, excellent_opportunities, good_opportunities
		FROM portfolio_summaries
		ORDER BY id DESC
		LIMIT 1
	`).Scan(
		&sum.TotalOpportunities, &sum.AvgOpportunityScore, &sum.Top10PercentThreshold,
		&sum.AvgPrice, &sum.MedianPrice, &grades, &areas,
		&sum.Exceptional, &sum.Excellent, &sum.Good,
	)
	if eris.Is(err, sql.ErrNoRows) {
		return sum, false, nil
	}
	if err != nil {
		return sum, false, eris.Wrapf(err, "%s: latest summary", s.dialect)
	}
	if err := json.Unmarshal([]byte(grades), &sum.GradeDistribution); err != nil {
		return sum, false, eris.Wrapf(err, "%s: decode grade distribution", s.dialect)
	}
	if err := json.Unmarshal([]byte(areas), &sum.AreaDistribution); err != nil {
		return sum, false, eris.Wrapf(err, "%s: decode area distribution", s.dialect)
	}
	return sum, true, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
