package handlers

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/diagnosis"
	s3service "taxfree-engine/internal/services/s3"
	"taxfree-engine/internal/utils"
)

const maxReportedErrors = 10

// ObjectStore reads uploaded batches and archives them.
type ObjectStore interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
	MoveFile(ctx context.Context, sourceKey, destKey string) error
}

// BulkInserter stores one batch of diagnoses.
type BulkInserter interface {
	BulkInsert(ctx context.Context, diagnoses []*models.Diagnosis) (*models.BulkInsertResult, error)
}

// CSVProcessorHandler handles S3 events for questionnaire CSV uploads.
type CSVProcessorHandler struct {
	files ObjectStore
	repo  BulkInserter
}

// NewCSVProcessorHandler creates a new CSV processor handler.
func NewCSVProcessorHandler(files ObjectStore, repo BulkInserter) *CSVProcessorHandler {
	return &CSVProcessorHandler{files: files, repo: repo}
}

// CSVProcessResult is the result of processing a CSV file.
type CSVProcessResult struct {
	Message  string   `json:"message"`
	BatchID  string   `json:"batch_id"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded CSV files.
func (h *CSVProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (CSVProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return CSVProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing CSV file",
		utils.String("bucket", record.S3.Bucket.Name),
		utils.String("key", key))

	content, err := h.files.DownloadFile(ctx, key)
	if err != nil {
		return CSVProcessResult{}, fmt.Errorf("failed to download CSV: %w", err)
	}

	result, err := h.Process(ctx, string(content))
	if err != nil {
		return result, err
	}

	// Archive processed file
	if err := h.files.MoveFile(ctx, key, ArchiveKey(key)); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	return result, nil
}

// Process diagnoses every valid row of content and stores them under one batch id.
func (h *CSVProcessorHandler) Process(ctx context.Context, content string) (CSVProcessResult, error) {
	logger := utils.GetLogger()
	batchID := uuid.NewString()

	rows, parseErrors := utils.NewCSVParser().ParseAnswers(content)
	if len(rows) == 0 {
		return CSVProcessResult{
			Message: "No valid rows found in CSV",
			BatchID: batchID,
			Failed:  len(parseErrors),
			Errors:  limitErrors(errorStrings(parseErrors)),
		}, nil
	}

	diagnoses := make([]*models.Diagnosis, 0, len(rows))
	for _, row := range rows {
		d := diagnosis.NewRecord(row.Answers, models.DiagnosisSourceCSV)
		d.BatchID = batchID
		d.Email = row.Email
		diagnoses = append(diagnoses, d)
	}

	logger.Info("Parsed CSV",
		utils.String("batchID", batchID),
		utils.Int("validRows", len(rows)),
		utils.Int("parseErrors", len(parseErrors)))

	inserted, err := h.repo.BulkInsert(ctx, diagnoses)
	if err != nil {
		logger.Error("Failed to insert diagnoses", utils.Error(err))
		return CSVProcessResult{}, fmt.Errorf("failed to insert diagnoses: %w", err)
	}

	logger.Info("Inserted diagnoses",
		utils.String("batchID", batchID),
		utils.Int("inserted", inserted.InsertedCount),
		utils.Int("failed", inserted.FailedCount))

	allErrors := append(errorStrings(parseErrors), inserted.Errors...)

	return CSVProcessResult{
		Message:  "CSV processed successfully",
		BatchID:  batchID,
		Inserted: inserted.InsertedCount,
		Failed:   inserted.FailedCount + len(parseErrors),
		Errors:   limitErrors(allErrors),
	}, nil
}

// ArchiveKey maps uploads/a/b.csv to processed/a/b.csv.
func ArchiveKey(key string) string {
	return s3service.ProcessedPrefix + strings.TrimPrefix(path.Clean(key), s3service.UploadPrefix)
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}

func limitErrors(errs []string) []string {
	if len(errs) > maxReportedErrors {
		return errs[:maxReportedErrors]
	}
	return errs
}
