// Package sql provides SQL-based store implementations for MySQL, PostgreSQL, and TiDB.
package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/store"
	"github.com/sociovia/waguard/utils"
)

// Dialect represents the SQL dialect.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectTiDB     Dialect = "tidb"
)

// Config holds the configuration for SQL store.
type Config struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the default SQL store configuration.
func DefaultConfig() Config {
	return Config{
		Dialect:         DialectMySQL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// Store implements the store.Store interface using a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	idGen   *utils.IDGenerator
}

// rebind converts MySQL-style placeholders (?) to the appropriate format for the dialect.
// For PostgreSQL, converts ? to $1, $2, etc.
// For MySQL/TiDB, returns the query unchanged.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var result []byte
	paramIndex := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, []byte(fmt.Sprintf("%d", paramIndex))...)
			paramIndex++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

// New creates a new SQL store.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open(string(cfg.Dialect), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:      db,
		dialect: cfg.Dialect,
		idGen:   utils.NewIDGenerator(),
	}, nil
}

// NewWithDB creates a new SQL store with an existing database connection.
func NewWithDB(db *sql.DB, dialect Dialect) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		idGen:   utils.NewIDGenerator(),
	}
}

// CreateCheck creates a new template check record.
func (s *Store) CreateCheck(ctx context.Context, tpl waguard.TemplateContext, contentHash string) (string, error) {
	id := s.idGen.Generate()
	now := time.Now().UnixMilli()

	query := s.rebind(`INSERT INTO template_check (id, template_name, language, category, submitter_id, trace_id, content_hash, gate, status, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		id, tpl.TemplateName, tpl.Language, tpl.Category, tpl.SubmitterID, tpl.TraceID,
		contentHash, waguard.GateAllow, waguard.StatusPending, now, now)
	if err != nil {
		return "", waguard.NewStoreError("create", "template_check", err)
	}

	return id, nil
}

// GetCheck gets a template check by ID.
func (s *Store) GetCheck(ctx context.Context, checkID string) (*waguard.TemplateCheck, error) {
	query := s.rebind(`SELECT id, template_name, language, category, submitter_id, trace_id, content_hash, gate, status, outcome_json, created_at, updated_at
              FROM template_check WHERE id = ?`)

	var tc waguard.TemplateCheck
	var outcomeJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, checkID).Scan(
		&tc.ID, &tc.TemplateName, &tc.Language, &tc.Category, &tc.SubmitterID, &tc.TraceID,
		&tc.ContentHash, &tc.Gate, &tc.Status, &outcomeJSON, &tc.CreatedAt, &tc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, waguard.ErrTaskNotFound
	}
	if err != nil {
		return nil, waguard.NewStoreError("get", "template_check", err)
	}
	tc.OutcomeJSON = outcomeJSON.String

	return &tc, nil
}

// UpdateCheckOutcome records the aggregated outcome for a template check.
func (s *Store) UpdateCheckOutcome(ctx context.Context, checkID string, outcome waguard.CheckOutcome) error {
	now := time.Now().UnixMilli()

	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	status := waguard.StatusDone
	if outcome.Safety == waguard.DecisionPending {
		status = waguard.StatusRunning
	}

	query := s.rebind(`UPDATE template_check SET gate = ?, status = ?, outcome_json = ?, updated_at = ? WHERE id = ?`)
	_, err = s.db.ExecContext(ctx, query, outcome.Gate, status, string(outcomeJSON), now, checkID)
	if err != nil {
		return waguard.NewStoreError("update", "template_check", err)
	}

	return nil
}

// UpdateCheckStatus updates the status for a template check.
func (s *Store) UpdateCheckStatus(ctx context.Context, checkID string, status waguard.CheckStatus) error {
	now := time.Now().UnixMilli()

	query := s.rebind(`UPDATE template_check SET status = ?, updated_at = ? WHERE id = ?`)
	_, err := s.db.ExecContext(ctx, query, status, now, checkID)
	if err != nil {
		return waguard.NewStoreError("update", "template_check", err)
	}

	return nil
}

// CreateCheckerTask creates a new checker task record.
func (s *Store) CreateCheckerTask(ctx context.Context, checkID, checker, mode, remoteTaskID string, raw map[string]any) (string, error) {
	id := s.idGen.Generate()
	now := time.Now().UnixMilli()

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("failed to marshal raw: %w", err)
	}

	query := s.rebind(`INSERT INTO checker_task (id, check_id, checker, mode, remote_task_id, done, raw_json, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query, id, checkID, checker, mode, remoteTaskID, false, string(rawJSON), now, now)
	if err != nil {
		return "", waguard.NewStoreError("create", "checker_task", err)
	}

	return id, nil
}

// GetCheckerTask gets a checker task by ID.
func (s *Store) GetCheckerTask(ctx context.Context, taskID string) (*waguard.CheckerTask, error) {
	query := s.rebind(`SELECT id, check_id, checker, mode, remote_task_id, done, result_json, raw_json, created_at, updated_at
              FROM checker_task WHERE id = ?`)

	var ct waguard.CheckerTask
	var resultJSON, rawJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, taskID).Scan(
		&ct.ID, &ct.CheckID, &ct.Checker, &ct.Mode, &ct.RemoteTaskID,
		&ct.Done, &resultJSON, &rawJSON, &ct.CreatedAt, &ct.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, waguard.ErrTaskNotFound
	}
	if err != nil {
		return nil, waguard.NewStoreError("get", "checker_task", err)
	}
	ct.ResultJSON = resultJSON.String
	ct.RawJSON = rawJSON.String

	return &ct, nil
}

// GetCheckerTaskByRemoteID gets a checker task by the checker-side task ID.
func (s *Store) GetCheckerTaskByRemoteID(ctx context.Context, checker, remoteTaskID string) (*waguard.CheckerTask, error) {
	query := s.rebind(`SELECT id, check_id, checker, mode, remote_task_id, done, result_json, raw_json, created_at, updated_at
              FROM checker_task WHERE checker = ? AND remote_task_id = ?`)

	var ct waguard.CheckerTask
	var resultJSON, rawJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, checker, remoteTaskID).Scan(
		&ct.ID, &ct.CheckID, &ct.Checker, &ct.Mode, &ct.RemoteTaskID,
		&ct.Done, &resultJSON, &rawJSON, &ct.CreatedAt, &ct.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, waguard.ErrTaskNotFound
	}
	if err != nil {
		return nil, waguard.NewStoreError("get", "checker_task", err)
	}
	ct.ResultJSON = resultJSON.String
	ct.RawJSON = rawJSON.String

	return &ct, nil
}

// UpdateCheckerTaskResult updates the result for a checker task.
func (s *Store) UpdateCheckerTaskResult(ctx context.Context, taskID string, done bool, result *waguard.SafetyResult, raw map[string]any) error {
	now := time.Now().UnixMilli()

	var resultJSON, rawJSON []byte
	var err error

	if result != nil {
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	if raw != nil {
		rawJSON, err = json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("failed to marshal raw: %w", err)
		}
	}

	query := s.rebind(`UPDATE checker_task SET done = ?, result_json = ?, raw_json = ?, updated_at = ? WHERE id = ?`)
	_, err = s.db.ExecContext(ctx, query, done, string(resultJSON), string(rawJSON), now, taskID)
	if err != nil {
		return waguard.NewStoreError("update", "checker_task", err)
	}

	return nil
}

// ListCheckerTasks lists every checker task for a template check.
func (s *Store) ListCheckerTasks(ctx context.Context, checkID string) ([]waguard.CheckerTask, error) {
	query := s.rebind(`SELECT id, check_id, checker, mode, remote_task_id, done, result_json, raw_json, created_at, updated_at
              FROM checker_task WHERE check_id = ? ORDER BY created_at ASC`)

	rows, err := s.db.QueryContext(ctx, query, checkID)
	if err != nil {
		return nil, waguard.NewStoreError("list", "checker_task", err)
	}
	defer rows.Close()

	var tasks []waguard.CheckerTask
	for rows.Next() {
		var ct waguard.CheckerTask
		var resultJSON, rawJSON sql.NullString
		if err := rows.Scan(&ct.ID, &ct.CheckID, &ct.Checker, &ct.Mode, &ct.RemoteTaskID,
			&ct.Done, &resultJSON, &rawJSON, &ct.CreatedAt, &ct.UpdatedAt); err != nil {
			return nil, waguard.NewStoreError("scan", "checker_task", err)
		}
		ct.ResultJSON = resultJSON.String
		ct.RawJSON = rawJSON.String
		tasks = append(tasks, ct)
	}

	return tasks, nil
}

// ListPendingAsyncTasks lists pending async tasks for a checker.
func (s *Store) ListPendingAsyncTasks(ctx context.Context, checker string, limit int) ([]waguard.PendingTask, error) {
	query := s.rebind(`SELECT id, checker, remote_task_id FROM checker_task
              WHERE checker = ? AND done = 0 AND mode = 'async'
              ORDER BY created_at ASC LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, checker, limit)
	if err != nil {
		return nil, waguard.NewStoreError("list", "checker_task", err)
	}
	defer rows.Close()

	var tasks []waguard.PendingTask
	for rows.Next() {
		var pt waguard.PendingTask
		if err := rows.Scan(&pt.CheckerTaskID, &pt.Checker, &pt.RemoteTaskID); err != nil {
			return nil, waguard.NewStoreError("scan", "checker_task", err)
		}
		tasks = append(tasks, pt)
	}

	return tasks, nil
}

// GetBinding gets the current binding for a template identity.
func (s *Store) GetBinding(ctx context.Context, templateName, language string) (*waguard.TemplateBinding, error) {
	query := s.rebind(`SELECT id, template_name, language, category, content_hash, check_id,
              gate, violation_ref_id, check_revision, updated_at
              FROM template_binding WHERE template_name = ? AND language = ?`)

	var b waguard.TemplateBinding
	err := s.db.QueryRowContext(ctx, query, templateName, language).Scan(
		&b.ID, &b.TemplateName, &b.Language, &b.Category, &b.ContentHash,
		&b.CheckID, &b.Gate, &b.ViolationRefID, &b.CheckRevision, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, waguard.NewStoreError("get", "template_binding", err)
	}

	return &b, nil
}

// UpsertBinding creates or updates a binding.
func (s *Store) UpsertBinding(ctx context.Context, binding waguard.TemplateBinding) error {
	now := time.Now().UnixMilli()
	binding.UpdatedAt = now

	if binding.ID == "" {
		binding.ID = s.idGen.Generate()
	}

	query := s.getUpsertBindingQuery()
	_, err := s.db.ExecContext(ctx, query,
		binding.ID, binding.TemplateName, binding.Language, binding.Category, binding.ContentHash,
		binding.CheckID, binding.Gate, binding.ViolationRefID, binding.CheckRevision, now)
	if err != nil {
		return waguard.NewStoreError("upsert", "template_binding", err)
	}

	return nil
}

func (s *Store) getUpsertBindingQuery() string {
	switch s.dialect {
	case DialectPostgres:
		return `INSERT INTO template_binding (id, template_name, language, category, content_hash,
                check_id, gate, violation_ref_id, check_revision, updated_at)
                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                ON CONFLICT (template_name, language) DO UPDATE SET
                category = $4, content_hash = $5, check_id = $6, gate = $7,
                violation_ref_id = $8, check_revision = $9, updated_at = $10`
	default: // MySQL, TiDB
		return `INSERT INTO template_binding (id, template_name, language, category, content_hash,
                check_id, gate, violation_ref_id, check_revision, updated_at)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
                ON DUPLICATE KEY UPDATE
                category = VALUES(category), content_hash = VALUES(content_hash), check_id = VALUES(check_id),
                gate = VALUES(gate), violation_ref_id = VALUES(violation_ref_id),
                check_revision = VALUES(check_revision), updated_at = VALUES(updated_at)`
	}
}

// ListBindingsByTemplate lists bindings for every language of a template.
func (s *Store) ListBindingsByTemplate(ctx context.Context, templateName string) ([]waguard.TemplateBinding, error) {
	query := s.rebind(`SELECT id, template_name, language, category, content_hash, check_id,
              gate, violation_ref_id, check_revision, updated_at
              FROM template_binding WHERE template_name = ?`)

	rows, err := s.db.QueryContext(ctx, query, templateName)
	if err != nil {
		return nil, waguard.NewStoreError("list", "template_binding", err)
	}
	defer rows.Close()

	var bindings []waguard.TemplateBinding
	for rows.Next() {
		var b waguard.TemplateBinding
		if err := rows.Scan(&b.ID, &b.TemplateName, &b.Language, &b.Category, &b.ContentHash,
			&b.CheckID, &b.Gate, &b.ViolationRefID, &b.CheckRevision, &b.UpdatedAt); err != nil {
			return nil, waguard.NewStoreError("scan", "template_binding", err)
		}
		bindings = append(bindings, b)
	}

	return bindings, nil
}

// CreateBindingHistory creates a new binding history record.
func (s *Store) CreateBindingHistory(ctx context.Context, history waguard.TemplateBindingHistory) error {
	now := time.Now().UnixMilli()

	if history.ID == "" {
		history.ID = s.idGen.Generate()
	}

	query := s.rebind(`INSERT INTO template_binding_history (id, template_name, language, category, content_hash,
              gate, violation_ref_id, check_revision, reason_json, source, reviewer_id, comment, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		history.ID, history.TemplateName, history.Language, history.Category, history.ContentHash,
		history.Gate, history.ViolationRefID, history.CheckRevision, history.ReasonJSON,
		history.Source, history.ReviewerID, history.Comment, now)
	if err != nil {
		return waguard.NewStoreError("create", "template_binding_history", err)
	}

	return nil
}

// ListBindingHistory lists binding history for a template identity.
func (s *Store) ListBindingHistory(ctx context.Context, templateName, language string, limit int) ([]waguard.TemplateBindingHistory, error) {
	query := s.rebind(`SELECT id, template_name, language, category, content_hash, gate,
              violation_ref_id, check_revision, reason_json, source, reviewer_id, comment, created_at
              FROM template_binding_history WHERE template_name = ? AND language = ?
              ORDER BY check_revision DESC LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, templateName, language, limit)
	if err != nil {
		return nil, waguard.NewStoreError("list", "template_binding_history", err)
	}
	defer rows.Close()

	var histories []waguard.TemplateBindingHistory
	for rows.Next() {
		var h waguard.TemplateBindingHistory
		if err := rows.Scan(&h.ID, &h.TemplateName, &h.Language, &h.Category, &h.ContentHash,
			&h.Gate, &h.ViolationRefID, &h.CheckRevision, &h.ReasonJSON,
			&h.Source, &h.ReviewerID, &h.Comment, &h.CreatedAt); err != nil {
			return nil, waguard.NewStoreError("scan", "template_binding_history", err)
		}
		histories = append(histories, h)
	}

	return histories, nil
}

// SaveViolationSnapshot saves the evidence for a flagged template.
func (s *Store) SaveViolationSnapshot(ctx context.Context, tpl waguard.TemplateContext, contentHash, bodyText string, outcome waguard.CheckOutcome) (string, error) {
	id := s.idGen.Generate()
	now := time.Now().UnixMilli()

	outcomeJSON, err := json.Marshal(outcome)
	if err != nil {
		return "", fmt.Errorf("failed to marshal outcome: %w", err)
	}

	query := s.rebind(`INSERT INTO violation_snapshot (id, template_name, language, submitter_id,
              content_hash, body_text, outcome_json, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = s.db.ExecContext(ctx, query, id, tpl.TemplateName, tpl.Language, tpl.SubmitterID,
		contentHash, bodyText, string(outcomeJSON), now)
	if err != nil {
		return "", waguard.NewStoreError("create", "violation_snapshot", err)
	}

	return id, nil
}

// GetViolationSnapshot gets a violation snapshot by ID.
func (s *Store) GetViolationSnapshot(ctx context.Context, snapshotID string) (*waguard.ViolationSnapshot, error) {
	query := s.rebind(`SELECT id, template_name, language, submitter_id, content_hash,
              body_text, outcome_json, created_at
              FROM violation_snapshot WHERE id = ?`)

	var vs waguard.ViolationSnapshot
	err := s.db.QueryRowContext(ctx, query, snapshotID).Scan(
		&vs.ID, &vs.TemplateName, &vs.Language, &vs.SubmitterID,
		&vs.ContentHash, &vs.BodyText, &vs.OutcomeJSON, &vs.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, waguard.ErrTaskNotFound
	}
	if err != nil {
		return nil, waguard.NewStoreError("get", "violation_snapshot", err)
	}

	return &vs, nil
}

// ListViolationsByTemplate lists violation snapshots for a template.
func (s *Store) ListViolationsByTemplate(ctx context.Context, templateName string, limit int) ([]waguard.ViolationSnapshot, error) {
	query := s.rebind(`SELECT id, template_name, language, submitter_id, content_hash,
              body_text, outcome_json, created_at
              FROM violation_snapshot WHERE template_name = ?
              ORDER BY created_at DESC LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, templateName, limit)
	if err != nil {
		return nil, waguard.NewStoreError("list", "violation_snapshot", err)
	}
	defer rows.Close()

	var snapshots []waguard.ViolationSnapshot
	for rows.Next() {
		var vs waguard.ViolationSnapshot
		if err := rows.Scan(&vs.ID, &vs.TemplateName, &vs.Language, &vs.SubmitterID,
			&vs.ContentHash, &vs.BodyText, &vs.OutcomeJSON, &vs.CreatedAt); err != nil {
			return nil, waguard.NewStoreError("scan", "violation_snapshot", err)
		}
		snapshots = append(snapshots, vs)
	}

	return snapshots, nil
}

// Now returns the current time.
func (s *Store) Now() time.Time {
	return time.Now()
}

// WithTx executes a function within a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &txStore{
		Store: s,
		tx:    tx,
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// txStore wraps Store for transaction support.
type txStore struct {
	*Store
	tx *sql.Tx
}
