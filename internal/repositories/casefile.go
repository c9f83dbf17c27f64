package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/myrjola/triage/internal/errors"
	"github.com/myrjola/triage/internal/models"
	"github.com/myrjola/triage/internal/sqlite"
)

// ErrCaseNotFound is returned when no case exists for the given id.
var ErrCaseNotFound = errors.NewSentinel("case not found")

// CaseRepository stores generated case payloads. The payload column keeps the
// generator output verbatim; normalization happens on read so that schema
// drift in old rows never corrupts the store.
type CaseRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

// Insert stores a raw case payload under the given id.
func (r *CaseRepository) Insert(ctx context.Context, id, title, difficulty string, payload []byte) error {
	stmt := `INSERT INTO cases (id, title, difficulty, payload) VALUES (?, ?, ?, ?)`
	if _, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, id, title, difficulty, string(payload)); err != nil {
		return errors.Wrap(err, "insert case", slog.String("case_id", id))
	}
	return nil
}

// Payload returns the raw generator payload for the given case id.
func (r *CaseRepository) Payload(ctx context.Context, id string) ([]byte, error) {
	var payload string
	stmt := `SELECT payload FROM cases WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &payload, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, errors.Wrap(err, "read case payload", slog.String("case_id", id))
	}
	return []byte(payload), nil
}

// List returns lobby summaries for all stored cases, newest first.
func (r *CaseRepository) List(ctx context.Context) ([]models.CaseSummary, error) {
	summaries := []models.CaseSummary{}
	stmt := `SELECT id, title, difficulty, created_at FROM cases ORDER BY created_at DESC, id`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &summaries, stmt); err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	return summaries, nil
}
