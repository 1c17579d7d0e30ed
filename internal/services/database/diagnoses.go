package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"taxfree-engine/internal/models"
)

const diagnosisColumns = `id, answers, result, source, batch_id, email, created_at`

// DiagnosisRepository handles diagnosis database operations.
type DiagnosisRepository struct {
	db *DB
}

// NewDiagnosisRepository creates a new diagnosis repository.
func NewDiagnosisRepository(db *DB) *DiagnosisRepository {
	return &DiagnosisRepository{db: db}
}

// Create stores a diagnosis. Missing ids and timestamps are filled in.
func (r *DiagnosisRepository) Create(ctx context.Context, d *models.Diagnosis) error {
	args, err := insertArgs(d)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, insertDiagnosisSQL, args...); err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}
	return nil
}

// BulkInsert stores a batch in one transaction. Each row runs in its own savepoint
// so a bad row is counted as failed without aborting the rest.
func (r *DiagnosisRepository) BulkInsert(ctx context.Context, diagnoses []*models.Diagnosis) (*models.BulkInsertResult, error) {
	result := &models.BulkInsertResult{
		Errors: []string{},
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, d := range diagnoses {
			args, err := insertArgs(d)
			if err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("diagnosis %s: %v", d.ID, err))
				continue
			}

			sp, err := tx.Begin(ctx)
			if err != nil {
				return fmt.Errorf("failed to create savepoint: %w", err)
			}

			if _, err := sp.Exec(ctx, insertDiagnosisSQL, args...); err != nil {
				_ = sp.Rollback(ctx)
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("diagnosis %s: %v", d.ID, err))
				continue
			}

			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("failed to release savepoint: %w", err)
			}
			result.InsertedCount++
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk insert failed: %w", err)
	}

	return result, nil
}

// GetByID retrieves one diagnosis. It returns models.ErrDiagnosisNotFound for unknown ids.
func (r *DiagnosisRepository) GetByID(ctx context.Context, id string) (*models.Diagnosis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, models.ErrDiagnosisNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1`, id)

	d, err := scanDiagnosis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrDiagnosisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get diagnosis: %w", err)
	}
	return d, nil
}

// ListRecent returns the newest diagnoses first.
func (r *DiagnosisRepository) ListRecent(ctx context.Context, limit int) ([]*models.Diagnosis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	return collectDiagnoses(rows)
}

// ListByBatch returns every diagnosis imported with one batch id, in insertion order.
func (r *DiagnosisRepository) ListByBatch(ctx context.Context, batchID string) ([]*models.Diagnosis, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE batch_id = $1 ORDER BY created_at, id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnoses: %w", err)
	}
	return collectDiagnoses(rows)
}

// CountByBatch returns the number of diagnoses in a batch.
func (r *DiagnosisRepository) CountByBatch(ctx context.Context, batchID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM diagnoses WHERE batch_id = $1", batchID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count diagnoses: %w", err)
	}
	return count, nil
}

// DeleteAll removes every diagnosis and returns how many were deleted.
func (r *DiagnosisRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.db.ExecContext(ctx, "DELETE FROM diagnoses")
	if err != nil {
		return 0, fmt.Errorf("failed to delete diagnoses: %w", err)
	}
	return n, nil
}

const insertDiagnosisSQL = `
	INSERT INTO diagnoses (id, industry, tax_type, revenue, estimated_income_tax, estimated_vat,
		estimated_insurance, answers, result, source, batch_id, email, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func insertArgs(d *models.Diagnosis) ([]any, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	if d.Source == "" {
		d.Source = models.DiagnosisSourceWeb
	}

	answers, err := json.Marshal(d.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}
	result, err := json.Marshal(d.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return []any{
		d.ID,
		string(d.Answers.Industry),
		string(d.Result.TaxType),
		d.Result.Revenue(),
		d.Result.EstimatedIncomeTax,
		d.Result.EstimatedVAT,
		d.Result.EstimatedInsurance,
		answers,
		result,
		string(d.Source),
		d.BatchID,
		d.Email,
		d.CreatedAt,
	}, nil
}

func scanDiagnosis(row pgx.Row) (*models.Diagnosis, error) {
	var (
		d       models.Diagnosis
		id      uuid.UUID
		answers []byte
		result  []byte
		source  string
	)

	if err := row.Scan(&id, &answers, &result, &source, &d.BatchID, &d.Email, &d.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(answers, &d.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}
	if err := json.Unmarshal(result, &d.Result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}

	d.ID = id.String()
	d.Source = models.DiagnosisSource(source)
	return &d, nil
}

func collectDiagnoses(rows pgx.Rows) ([]*models.Diagnosis, error) {
	defer rows.Close()

	diagnoses := []*models.Diagnosis{}
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
		}
		diagnoses = append(diagnoses, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate diagnoses: %w", err)
	}
	return diagnoses, nil
}
