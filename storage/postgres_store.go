package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"social-analytics/models"
	"social-analytics/utils"
)

var _ AccountStore = (*PostgresStore)(nil)

// PostgresStore persists tracked accounts and their daily analytics snapshots.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := utils.RetryConfig{MaxAttempts: 10, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	s := NewPostgresStoreFromDB(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an existing handle without migrating.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the schema if it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id         SERIAL PRIMARY KEY,
			platform   VARCHAR(20)  NOT NULL,
			handle     VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (platform, handle)
		);

		CREATE TABLE IF NOT EXISTS analytics_data (
			id         SERIAL PRIMARY KEY,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			date       DATE    NOT NULL,
			followers  INTEGER NOT NULL DEFAULT 0,
			likes      INTEGER NOT NULL DEFAULT 0,
			comments   INTEGER NOT NULL DEFAULT 0,
			shares     INTEGER NOT NULL DEFAULT 0,
			UNIQUE (account_id, date)
		);

		CREATE INDEX IF NOT EXISTS idx_analytics_account_date ON analytics_data(account_id, date);
	`)
	return err
}

// AddAccount registers a handle. Adding an existing platform/handle pair
// returns the stored account.
func (s *PostgresStore) AddAccount(ctx context.Context, platform models.Platform, handle string) (models.Account, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return models.Account{}, fmt.Errorf("%w: empty handle", models.ErrMalformedInput)
	}

	acc := models.Account{Platform: platform, Handle: handle}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO accounts (platform, handle)
		VALUES ($1, $2)
		ON CONFLICT (platform, handle) DO UPDATE SET handle = EXCLUDED.handle
		RETURNING id, created_at
	`, platform.String(), handle).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		return models.Account{}, fmt.Errorf("postgres: add account: %w", err)
	}
	return acc, nil
}

// ListAccounts returns every tracked account ordered by id.
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, platform, handle, created_at
		FROM accounts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// Account returns the account with the given id or models.ErrNotFound.
func (s *PostgresStore) Account(ctx context.Context, id int64) (models.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, platform, handle, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, fmt.Errorf("account %d: %w", id, models.ErrNotFound)
	}
	return acc, err
}

// SaveAnalytics upserts the snapshot for the account and day.
func (s *PostgresStore) SaveAnalytics(ctx context.Context, d models.AnalyticsData) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analytics_data (account_id, date, followers, likes, comments, shares)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, date) DO UPDATE SET
			followers = EXCLUDED.followers,
			likes     = EXCLUDED.likes,
			comments  = EXCLUDED.comments,
			shares    = EXCLUDED.shares
	`, d.AccountID, d.Date, d.Followers, d.Likes, d.Comments, d.Shares)
	if err != nil {
		return fmt.Errorf("postgres: save analytics: %w", err)
	}
	return nil
}

// History returns the account's daily snapshots, oldest first.
func (s *PostgresStore) History(ctx context.Context, accountID int64) ([]models.AnalyticsData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, date, followers, likes, comments, shares
		FROM analytics_data
		WHERE account_id = $1
		ORDER BY date
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("postgres: history: %w", err)
	}
	defer rows.Close()

	history := []models.AnalyticsData{}
	for rows.Next() {
		var d models.AnalyticsData
		if err := rows.Scan(&d.AccountID, &d.Date, &d.Followers, &d.Likes, &d.Comments, &d.Shares); err != nil {
			return nil, fmt.Errorf("postgres: scan history row: %w", err)
		}
		history = append(history, d)
	}
	return history, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(r rowScanner) (models.Account, error) {
	var (
		acc      models.Account
		platform string
	)
	if err := r.Scan(&acc.ID, &platform, &acc.Handle, &acc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, err
		}
		return models.Account{}, fmt.Errorf("postgres: scan account: %w", err)
	}
	acc.Platform = models.Platform(platform)
	return acc, nil
}
