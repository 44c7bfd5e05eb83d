// Package store persists canonicalized scrapes in a SQL database so targets
// can be replayed and compared between runs.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	// Registers the pure-Go sqlite driver.
	_ "modernc.org/sqlite"
)

// Scrape is one stored scrape: the canonical rendering of an exposition
// fetched from a target.
type Scrape struct {
	ID        int64     `db:"id"`
	Target    string    `db:"target"`
	Format    string    `db:"format"`
	Body      string    `db:"body"`
	ScrapedAt time.Time `db:"scraped_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS scrapes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	target TEXT NOT NULL,
	format TEXT NOT NULL,
	body TEXT NOT NULL,
	scraped_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS scrapes_target_idx ON scrapes (target, scraped_at);
`

// Open opens the sqlite database at dsn and ensures the schema exists.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ScrapeWriteRepository provides write access to stored scrapes.
type ScrapeWriteRepository struct {
	db *sqlx.DB
}

// NewScrapeWriteRepository creates a ScrapeWriteRepository on the given
// database connection.
func NewScrapeWriteRepository(db *sqlx.DB) *ScrapeWriteRepository {
	return &ScrapeWriteRepository{db: db}
}

// Save appends one scrape.
func (r *ScrapeWriteRepository) Save(ctx context.Context, scrape *Scrape) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO scrapes (target, format, body, scraped_at)
		VALUES (:target, :format, :body, :scraped_at)
	`, scrape)
	return err
}

// ScrapeReadRepository provides read access to stored scrapes.
type ScrapeReadRepository struct {
	db *sqlx.DB
}

// NewScrapeReadRepository creates a ScrapeReadRepository on the given
// database connection.
func NewScrapeReadRepository(db *sqlx.DB) *ScrapeReadRepository {
	return &ScrapeReadRepository{db: db}
}

// Latest returns the most recent scrape of a target, or nil if the target
// has never been scraped.
func (r *ScrapeReadRepository) Latest(ctx context.Context, target string) (*Scrape, error) {
	var scrape Scrape
	query := `
		SELECT id, target, format, body, scraped_at
		FROM scrapes
		WHERE target = $1
		ORDER BY scraped_at DESC, id DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &scrape, query, target)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &scrape, nil
}

// List returns every stored scrape of a target, oldest first.
func (r *ScrapeReadRepository) List(ctx context.Context, target string) ([]*Scrape, error) {
	var scrapes []Scrape
	query := `
		SELECT id, target, format, body, scraped_at
		FROM scrapes
		WHERE target = $1
		ORDER BY scraped_at ASC, id ASC
	`

	err := r.db.SelectContext(ctx, &scrapes, query, target)
	if err != nil {
		return nil, err
	}

	result := make([]*Scrape, 0, len(scrapes))
	for i := range scrapes {
		result = append(result, &scrapes[i])
	}
	return result, nil
}

// Targets returns the distinct targets with at least one stored scrape.
func (r *ScrapeReadRepository) Targets(ctx context.Context) ([]string, error) {
	var targets []string
	err := r.db.SelectContext(ctx, &targets, `SELECT DISTINCT target FROM scrapes ORDER BY target`)
	if err != nil {
		return nil, err
	}
	return targets, nil
}
