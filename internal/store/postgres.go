package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

//go:embed schema.sql
var schema string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertAction(ctx context.Context, a *Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO matchmaker_intro_actions (from_id, to_id, status, notes, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (from_id, to_id) DO UPDATE SET
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING action_id, updated_at`,
		a.FromID, a.ToID, a.Status, a.Notes,
	).Scan(&a.ID, &a.UpdatedAt)
}

func (s *PostgresStore) ListActions(ctx context.Context) ([]Action, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT action_id, from_id, to_id, status, notes, updated_at
		FROM matchmaker_intro_actions
		ORDER BY from_id, to_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.FromID, &a.ToID, &a.Status, &a.Notes, &a.UpdatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT body FROM matchmaker_profiles ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []profile.Profile
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var p profile.Profile
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode stored profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *PostgresStore) SaveProfiles(ctx context.Context, profiles []profile.Profile, overwrite bool) (int, error) {
	if err := profile.ValidateAll(profiles); err != nil {
		return 0, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if overwrite {
		if _, err := tx.Exec(ctx, `DELETE FROM matchmaker_profiles`); err != nil {
			return 0, fmt.Errorf("clear profiles: %w", err)
		}
	}

	batch := &pgx.Batch{}
	for _, p := range profiles {
		body, err := json.Marshal(p)
		if err != nil {
			return 0, fmt.Errorf("encode profile %s: %w", p.ID, err)
		}
		batch.Queue(`
			INSERT INTO matchmaker_profiles (profile_id, body, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (profile_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
			p.ID, body)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("store profiles: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM matchmaker_profiles`).Scan(&count); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit profiles: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ResetProfiles(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM matchmaker_profiles`)
	return err
}
