package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/mealwise/mealwise/internal/errors"
	"github.com/mealwise/mealwise/internal/mealplan"
)

// timeFormat is the column encoding for timestamps. RFC 3339 with
// nanoseconds sorts lexicographically, which the list index relies on.
const timeFormat = time.RFC3339Nano

// SQLiteStore is the SQLite-backed Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if necessary) the database at dbPath and
// ensures the schema exists. Pass ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// SQLite permits one writer at a time. A single connection serializes
	// access on our side instead of surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS plan_records (
			id TEXT PRIMARY KEY,
			task_token TEXT NOT NULL UNIQUE,
			owner_id TEXT NOT NULL,
			parameters TEXT NOT NULL,
			state TEXT NOT NULL,
			progress INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			result TEXT,
			error_kind TEXT,
			error_message TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			completed_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_plan_records_owner_created
			ON plan_records(owner_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_plan_records_owner_token
			ON plan_records(owner_id, task_token);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "creating schema")
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new record.
func (s *SQLiteStore) Create(ctx context.Context, rec *mealplan.PlanRecord) error {
	if rec.State != mealplan.StatePending {
		return errors.Wrapf(errors.ErrInvalidTransition, "new record must be %s, got %s",
			mealplan.StatePending, rec.State)
	}
	if rec.Result != nil || rec.Error != nil {
		return errors.New("new record must not carry a result or error")
	}

	params, err := json.Marshal(rec.Parameters)
	if err != nil {
		return errors.Wrap(err, "encoding parameters")
	}

	query := `INSERT INTO plan_records
		(id, task_token, owner_id, parameters, state, progress, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.TaskToken, rec.OwnerID, string(params), string(rec.State),
		rec.Progress, rec.Attempts,
		rec.CreatedAt.UTC().Format(timeFormat),
		rec.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return errors.Wrapf(err, "inserting record %s", rec.ID)
	}
	return nil
}

// Get returns the record with the given ID regardless of owner.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*mealplan.PlanRecord, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("plan", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading record %s", id)
	}
	return rec, nil
}

// GetByToken returns the owner's record with the given task token.
// A missing token and a token owned by a different principal produce the
// same NotFoundError.
func (s *SQLiteStore) GetByToken(ctx context.Context, ownerID, token string) (*mealplan.PlanRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+` WHERE owner_id = ? AND task_token = ?`, ownerID, token)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("plan", token)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading record by token %s", token)
	}
	return rec, nil
}

// List returns the owner's records, newest first.
func (s *SQLiteStore) List(ctx context.Context, ownerID string, opts ListOptions) ([]*mealplan.PlanRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE owner_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		ownerID, limit, opts.Offset)
	if err != nil {
		return nil, errors.Wrapf(err, "listing records for owner %s", ownerID)
	}
	defer rows.Close()

	var recs []*mealplan.PlanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning record")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating records")
	}
	return recs, nil
}

// ListActive returns all pending and processing records, oldest first.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]*mealplan.PlanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE state IN (?, ?) ORDER BY created_at ASC, id ASC`,
		string(mealplan.StatePending), string(mealplan.StateProcessing))
	if err != nil {
		return nil, errors.Wrap(err, "listing active records")
	}
	defer rows.Close()

	var recs []*mealplan.PlanRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning record")
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating records")
	}
	return recs, nil
}

// Delete removes the owner's record with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM plan_records WHERE owner_id = ? AND id = ?`, ownerID, id)
	if err != nil {
		return errors.Wrapf(err, "deleting record %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	if n == 0 {
		return errors.NewNotFoundError("plan", id)
	}
	return nil
}

// MarkProcessing transitions the record into StateProcessing and increments
// its attempt counter.
func (s *SQLiteStore) MarkProcessing(ctx context.Context, id string) error {
	return s.transition(ctx, id, mealplan.StateProcessing, func(tx *sql.Tx, rec *mealplan.PlanRecord, now string) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE plan_records SET state = ?, attempts = attempts + 1, updated_at = ? WHERE id = ?`,
			string(mealplan.StateProcessing), now, id)
		return err
	})
}

// SetProgress updates the progress hint of a processing record.
func (s *SQLiteStore) SetProgress(ctx context.Context, id string, progress int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	rec, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if rec.State.IsTerminal() {
		return errors.Wrapf(errors.ErrRecordTerminal, "record %s", id)
	}
	if rec.State != mealplan.StateProcessing {
		return errors.Wrapf(errors.ErrInvalidTransition,
			"progress update on %s record %s", rec.State, id)
	}
	if progress < rec.Progress {
		return errors.Wrapf(errors.ErrProgressRegression,
			"record %s: %d -> %d", id, rec.Progress, progress)
	}
	if progress > 100 {
		progress = 100
	}

	now := time.Now().UTC().Format(timeFormat)
	if _, err := tx.ExecContext(ctx,
		`UPDATE plan_records SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, now, id); err != nil {
		return errors.Wrapf(err, "updating progress for record %s", id)
	}
	return errors.Wrap(tx.Commit(), "committing progress update")
}

// MarkCompleted transitions the record into StateCompleted with the result.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id string, result *mealplan.GeneratedPlan) error {
	if result == nil {
		return errors.New("completed record requires a result")
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}

	return s.transition(ctx, id, mealplan.StateCompleted, func(tx *sql.Tx, rec *mealplan.PlanRecord, now string) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE plan_records
				SET state = ?, progress = 100, result = ?, error_kind = NULL, error_message = NULL,
				    updated_at = ?, completed_at = ?
				WHERE id = ?`,
			string(mealplan.StateCompleted), string(payload), now, now, id)
		return err
	})
}

// MarkFailed transitions the record into StateFailed with the error detail.
func (s *SQLiteStore) MarkFailed(ctx context.Context, id string, info mealplan.ErrorInfo) error {
	return s.transition(ctx, id, mealplan.StateFailed, func(tx *sql.Tx, rec *mealplan.PlanRecord, now string) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE plan_records
				SET state = ?, result = NULL, error_kind = ?, error_message = ?,
				    updated_at = ?, completed_at = ?
				WHERE id = ?`,
			string(mealplan.StateFailed), info.Kind, info.Message, now, now, id)
		return err
	})
}

// CancelPending transitions a pending record into StateFailed with the error
// detail. The pending check and the write share one transaction, so a worker
// that marked the record processing after the caller's read cannot have its
// in-flight work failed underneath it.
func (s *SQLiteStore) CancelPending(ctx context.Context, id string, info mealplan.ErrorInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	rec, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if rec.State.IsTerminal() {
		return errors.Wrapf(errors.ErrRecordTerminal, "record %s is %s", id, rec.State)
	}
	if rec.State != mealplan.StatePending {
		return errors.Wrapf(errors.ErrNotCancellable, "record %s is %s", id, rec.State)
	}

	now := time.Now().UTC().Format(timeFormat)
	if _, err := tx.ExecContext(ctx,
		`UPDATE plan_records
			SET state = ?, result = NULL, error_kind = ?, error_message = ?,
			    updated_at = ?, completed_at = ?
			WHERE id = ?`,
		string(mealplan.StateFailed), info.Kind, info.Message, now, now, id); err != nil {
		return errors.Wrapf(err, "cancelling record %s", id)
	}
	return errors.Wrapf(tx.Commit(), "committing cancellation of record %s", id)
}

// transition runs a state change inside a transaction: load the current row,
// validate the state machine, apply the write, commit.
func (s *SQLiteStore) transition(ctx context.Context, id string, next mealplan.State,
	apply func(tx *sql.Tx, rec *mealplan.PlanRecord, now string) error) error {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	rec, err := getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if rec.State.IsTerminal() {
		return errors.Wrapf(errors.ErrRecordTerminal, "record %s is %s", id, rec.State)
	}
	if !rec.State.CanTransitionTo(next) {
		return errors.Wrapf(errors.ErrInvalidTransition, "record %s: %s -> %s", id, rec.State, next)
	}

	now := time.Now().UTC().Format(timeFormat)
	if err := apply(tx, rec, now); err != nil {
		return errors.Wrapf(err, "updating record %s", id)
	}
	return errors.Wrapf(tx.Commit(), "committing transition of record %s", id)
}

const selectColumns = `SELECT id, task_token, owner_id, parameters, state, progress, attempts,
	result, error_kind, error_message, created_at, updated_at, completed_at
	FROM plan_records`

func getForUpdate(ctx context.Context, tx *sql.Tx, id string) (*mealplan.PlanRecord, error) {
	row := tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("plan", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading record %s", id)
	}
	return rec, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*mealplan.PlanRecord, error) {
	var (
		rec         mealplan.PlanRecord
		params      string
		state       string
		result      sql.NullString
		errKind     sql.NullString
		errMessage  sql.NullString
		createdAt   string
		updatedAt   string
		completedAt sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.TaskToken, &rec.OwnerID, &params, &state,
		&rec.Progress, &rec.Attempts, &result, &errKind, &errMessage,
		&createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
		return nil, errors.Wrap(err, "decoding parameters")
	}
	rec.State = mealplan.State(state)

	if result.Valid {
		var plan mealplan.GeneratedPlan
		if err := json.Unmarshal([]byte(result.String), &plan); err != nil {
			return nil, errors.Wrap(err, "decoding result")
		}
		rec.Result = &plan
	}
	if errKind.Valid {
		rec.Error = &mealplan.ErrorInfo{
			Kind:    errKind.String,
			Message: errMessage.String,
		}
	}

	if rec.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, errors.Wrap(err, "parsing created_at")
	}
	if rec.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return nil, errors.Wrap(err, "parsing updated_at")
	}
	if completedAt.Valid {
		t, err := time.Parse(timeFormat, completedAt.String)
		if err != nil {
			return nil, errors.Wrap(err, "parsing completed_at")
		}
		rec.CompletedAt = &t
	}

	return &rec, nil
}
