// Package history persists import summaries in PostgreSQL.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/credport/internal/core"
)

// DefaultLimit is used by Recent when the caller passes a non-positive limit.
const DefaultLimit = 50

// MaxLimit caps how many rows Recent returns.
const MaxLimit = 500

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// Store reads and writes the import_history table.
type Store struct {
	db DBTX
}

// NewStore creates a store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

const insertImport = `
INSERT INTO import_history (
    id, reference, format, generation, state,
    rows_attempted, imported, failed, folders, folder_errors, warnings,
    error, duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO NOTHING`

// Record inserts one summary. Recording the same id twice is a no-op.
func (s *Store) Record(ctx context.Context, sum core.ImportSummary) error {
	id := toPgUUID(sum.ID)
	if !id.Valid {
		return fmt.Errorf("record import: invalid id %q", sum.ID)
	}

	_, err := s.db.Exec(ctx, insertImport,
		id,
		sum.Reference,
		toPgText(sum.Format),
		sum.Generation,
		string(sum.State),
		int32(sum.RowsAttempted),
		int32(sum.Imported),
		int32(sum.Failed),
		int32(sum.Folders),
		int32(sum.FolderErrors),
		int32(sum.Warnings),
		toPgText(sum.Error),
		sum.Duration.Milliseconds(),
		toPgTimestamptz(sum.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

const listRecent = `
SELECT id, reference, format, generation, state,
       rows_attempted, imported, failed, folders, folder_errors, warnings,
       error, duration_ms, created_at
FROM import_history
ORDER BY created_at DESC
LIMIT $1`

// Recent returns the latest summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.ImportSummary, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.db.Query(ctx, listRecent, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []core.ImportSummary
	for rows.Next() {
		var (
			id                                                          pgtype.UUID
			format, errText                                             pgtype.Text
			state                                                       string
			attempted, imported, failed, folders, folderErrs, warnings int32
			durationMS                                                  int64
			createdAt                                                   pgtype.Timestamptz
			sum                                                         core.ImportSummary
		)
		if err := rows.Scan(
			&id, &sum.Reference, &format, &sum.Generation, &state,
			&attempted, &imported, &failed, &folders, &folderErrs, &warnings,
			&errText, &durationMS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}

		sum.ID = uuidToString(id)
		sum.Format = format.String
		sum.State = core.SessionState(state)
		sum.RowsAttempted = int(attempted)
		sum.Imported = int(imported)
		sum.Failed = int(failed)
		sum.Folders = int(folders)
		sum.FolderErrors = int(folderErrs)
		sum.Warnings = int(warnings)
		sum.Error = errText.String
		sum.Duration = time.Duration(durationMS) * time.Millisecond
		sum.CreatedAt = createdAt.Time
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return out, nil
}

const pruneBatch = `
DELETE FROM import_history
WHERE id IN (
    SELECT id FROM import_history
    WHERE created_at < $1
    LIMIT $2
)`

// Prune deletes summaries created before the cutoff, batchSize rows per
// statement, and returns how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 5000
	}

	var total int64
	for {
		tag, err := s.db.Exec(ctx, pruneBatch, toPgTimestamptz(before), int32(batchSize))
		if err != nil {
			return total, fmt.Errorf("prune imports: %w", err)
		}
		total += tag.RowsAffected()
		if tag.RowsAffected() < int64(batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

// Helper functions for type conversion

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

func toPgTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		t = time.Now()
	}
	return pgtype.Timestamptz{Time: t.UTC(), Valid: true}
}
