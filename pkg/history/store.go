package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"yabaitray/pkg/history/migrations"
	"yabaitray/pkg/yabai"
)

// Store keeps a log of observed layout transitions in sqlite.
type Store struct {
	db *sql.DB
}

type Transition struct {
	From       yabai.Layout
	To         yabai.Layout
	Cause      string
	ObservedAt time.Time
}

func (t Transition) String() string {
	return fmt.Sprintf("%s  %s -> %s  (%s)", t.ObservedAt.Format(time.RFC3339), t.From, t.To, t.Cause)
}

func NewStore(filename string, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := migrations.Migrate(db, log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RecordTransition(from, to yabai.Layout, cause string) error {
	_, err := s.db.Exec(
		`INSERT INTO transitions (from_layout, to_layout, cause, observed_at) VALUES (?, ?, ?, ?)`,
		string(from), string(to), cause, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}

	return nil
}

// Recent returns up to limit transitions, newest first.
func (s *Store) Recent(limit int) ([]Transition, error) {
	rows, err := s.db.Query(
		`SELECT from_layout, to_layout, cause, observed_at FROM transitions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite select: %w", err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var (
			t        Transition
			from, to string
		)
		if err := rows.Scan(&from, &to, &t.Cause, &t.ObservedAt); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}

		if t.From, err = yabai.ParseLayout(from); err != nil {
			return nil, fmt.Errorf("stored from_layout: %w", err)
		}
		if t.To, err = yabai.ParseLayout(to); err != nil {
			return nil, fmt.Errorf("stored to_layout: %w", err)
		}

		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}

	return out, nil
}
