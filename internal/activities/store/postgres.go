// internal/activities/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mergington-activities/internal/activities"
	apperrors "mergington-activities/internal/common/errors"

	"github.com/lib/pq"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS activities (
		name             TEXT PRIMARY KEY,
		description      TEXT NOT NULL DEFAULT '',
		schedule         TEXT NOT NULL DEFAULT '',
		max_participants INTEGER NOT NULL CHECK (max_participants > 0),
		position         INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_participants (
		activity_name TEXT NOT NULL REFERENCES activities(name),
		email         TEXT NOT NULL,
		position      INTEGER NOT NULL,
		UNIQUE (activity_name, email)
	)`,
}

// Postgres keeps rosters in two tables; participant order is kept by position.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the tables when they are missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	}
	return nil
}

func (s *Postgres) Seed(ctx context.Context, seed []activities.Activity) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, a := range seed {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO activities (name, description, schedule, max_participants, position)
			SELECT $1, $2, $3, $4, COALESCE(MAX(position), -1) + 1 FROM activities
			ON CONFLICT (name) DO NOTHING`,
			a.Name, a.Description, a.Schedule, a.MaxParticipants,
		)
		if err != nil {
			return fmt.Errorf("postgres seed %s: %w", a.Name, err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("postgres seed %s: %w", a.Name, err)
		}
		if inserted == 0 {
			continue
		}

		for i, email := range a.Participants {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO activity_participants (activity_name, email, position)
				VALUES ($1, $2, $3)`,
				a.Name, email, i,
			); err != nil {
				return fmt.Errorf("postgres seed participant %s: %w", a.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context) ([]activities.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, schedule, max_participants
		FROM activities
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("postgres list: %w", err)
	}
	defer rows.Close()

	var out []activities.Activity
	index := make(map[string]int)
	for rows.Next() {
		a := activities.Activity{Participants: []string{}}
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants); err != nil {
			return nil, fmt.Errorf("postgres list scan: %w", err)
		}
		index[a.Name] = len(out)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list: %w", err)
	}

	prows, err := s.db.QueryContext(ctx, `
		SELECT activity_name, email
		FROM activity_participants
		ORDER BY activity_name, position`)
	if err != nil {
		return nil, fmt.Errorf("postgres list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var name, email string
		if err := prows.Scan(&name, &email); err != nil {
			return nil, fmt.Errorf("postgres list participants scan: %w", err)
		}
		if i, ok := index[name]; ok {
			out[i].Participants = append(out[i].Participants, email)
		}
	}
	if err := prows.Err(); err != nil {
		return nil, fmt.Errorf("postgres list participants: %w", err)
	}
	return out, nil
}

func (s *Postgres) Get(ctx context.Context, name string) (activities.Activity, bool, error) {
	a := activities.Activity{Name: name, Participants: []string{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT description, schedule, max_participants
		FROM activities
		WHERE name = $1`, name,
	).Scan(&a.Description, &a.Schedule, &a.MaxParticipants)
	if errors.Is(err, sql.ErrNoRows) {
		return activities.Activity{}, false, nil
	}
	if err != nil {
		return activities.Activity{}, false, fmt.Errorf("postgres get %s: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT email
		FROM activity_participants
		WHERE activity_name = $1
		ORDER BY position`, name)
	if err != nil {
		return activities.Activity{}, false, fmt.Errorf("postgres get participants %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return activities.Activity{}, false, fmt.Errorf("postgres get participants scan: %w", err)
		}
		a.Participants = append(a.Participants, email)
	}
	if err := rows.Err(); err != nil {
		return activities.Activity{}, false, fmt.Errorf("postgres get participants %s: %w", name, err)
	}
	return a, true, nil
}

// AppendParticipant relies on the table constraints as a second line of
// defence when several instances share one database.
func (s *Postgres) AppendParticipant(ctx context.Context, name, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_participants (activity_name, email, position)
		SELECT $1, $2, COALESCE(MAX(position), -1) + 1
		FROM activity_participants
		WHERE activity_name = $1`,
		name, email,
	)
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			return activities.ErrUnknownActivity
		case pqUniqueViolation:
			return apperrors.NewAlreadySignedUpError(name, email)
		}
	}
	return fmt.Errorf("postgres append %s: %w", name, err)
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
