package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-admin/internal/platform/db"
)

// ApprovalLog represents a single operator action on an approval inbox.
type ApprovalLog struct {
	ID     uuid.UUID
	Module string
	Ref    string
	Actor  string
	Role   string
	Action string
	Result string
	Note   string
	Detail string
	At     time.Time
}

// ApprovalRecorder persists approval history. A recorder without a pool
// discards entries.
type ApprovalRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(pool *pgxpool.Pool, logger *slog.Logger) *ApprovalRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalRecorder{pool: pool, logger: logger, now: time.Now}
}

var approvalSchema = []string{`CREATE TABLE IF NOT EXISTS approval_actions (
	id UUID PRIMARY KEY,
	module TEXT NOT NULL,
	ref TEXT NOT NULL,
	actor TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	action TEXT NOT NULL,
	result TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS approval_actions_module_ref_idx ON approval_actions (module, ref, at)`,
}

// EnsureSchema creates the audit table when missing.
func (r *ApprovalRecorder) EnsureSchema(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, stmt := range approvalSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("approval schema: %w", err)
			}
		}
		return nil
	})
}

// Enabled reports whether entries are persisted.
func (r *ApprovalRecorder) Enabled() bool {
	return r != nil && r.pool != nil
}

// Record writes approval entry to database.
func (r *ApprovalRecorder) Record(ctx context.Context, log ApprovalLog) error {
	if r == nil {
		return errors.New("approval recorder not initialised")
	}
	if log.Module == "" {
		return errors.New("approval module required")
	}
	if log.Ref == "" {
		return errors.New("approval ref required")
	}
	if log.Action == "" {
		return errors.New("approval action required")
	}
	if r.pool == nil {
		return nil
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.At.IsZero() {
		log.At = r.now()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO approval_actions (id, module, ref, actor, role, action, result, note, detail, at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.Module, log.Ref, log.Actor, log.Role, log.Action, log.Result, log.Note, log.Detail, log.At)
	if err != nil {
		r.logger.Error("record approval", slog.Any("error", err))
		return err
	}
	return nil
}

// List returns approvals for module/ref, oldest first.
func (r *ApprovalRecorder) List(ctx context.Context, module, ref string) ([]ApprovalLog, error) {
	if r == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	if r.pool == nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, module, ref, actor, role, action, result, note, detail, at
FROM approval_actions WHERE module=$1 AND ref=$2 ORDER BY at ASC`, module, ref)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ApprovalLog
	for rows.Next() {
		var l ApprovalLog
		if err := rows.Scan(&l.ID, &l.Module, &l.Ref, &l.Actor, &l.Role, &l.Action, &l.Result, &l.Note, &l.Detail, &l.At); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
