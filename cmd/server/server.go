package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/cache"
	"taxfree-engine/internal/services/calendar"
	"taxfree-engine/internal/services/chat"
	"taxfree-engine/internal/services/diagnosis"
	"taxfree-engine/internal/services/knowledge"
	s3service "taxfree-engine/internal/services/s3"
	"taxfree-engine/internal/services/ses"
	"taxfree-engine/internal/utils"
)

const (
	maxBodyBytes        = 1 << 20
	maxUploadBytes      = 10 << 20
	defaultListLimit    = 20
	upcomingInEmail     = 5
	chatStreamFailedMsg = "응답 생성 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// ReportExporter writes report documents and returns a download link.
type ReportExporter interface {
	UploadReport(ctx context.Context, d *models.Diagnosis, report any, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// ReportMailer delivers report emails.
type ReportMailer interface {
	SendDiagnosisReport(ctx context.Context, params ses.ReportEmailParams) (*ses.SendEmailResult, error)
}

// Server holds all dependencies
type Server struct {
	config  *config.Config
	store   *cache.Store
	health  *handlers.HealthHandler
	batches *handlers.CSVProcessorHandler
	chat    *chat.Service
	reports ReportExporter
	mailer  ReportMailer
	now     func() time.Time
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Report is the exported document of one diagnosis.
type Report struct {
	Diagnosis *models.Diagnosis `json:"diagnosis"`
	Calendar  []calendar.Entry  `json:"calendar"`
	CreatedAt time.Time         `json:"created_at"`
}

// EmailRequest is the body of POST /api/diagnosis/{id}/email.
type EmailRequest struct {
	Email string `json:"email"`
}

// Routes mounts every endpoint on a new ServeMux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/health", s.healthHandler)

	mux.HandleFunc("POST /api/diagnosis", s.createDiagnosisHandler)
	mux.HandleFunc("GET /api/diagnosis/default", s.defaultDiagnosisHandler)
	mux.HandleFunc("GET /api/diagnosis/{id}", s.getDiagnosisHandler)
	mux.HandleFunc("GET /api/diagnosis/{id}/calendar", s.calendarHandler)
	mux.HandleFunc("POST /api/diagnosis/{id}/export", s.exportHandler)
	mux.HandleFunc("POST /api/diagnosis/{id}/email", s.emailHandler)
	mux.HandleFunc("GET /api/diagnoses", s.listDiagnosesHandler)

	mux.HandleFunc("POST /api/upload", s.uploadHandler)
	mux.HandleFunc("GET /api/knowledge", s.knowledgeHandler)
	mux.HandleFunc("GET /api/knowledge/entries", s.knowledgeEntriesHandler)
	mux.HandleFunc("POST /api/chat", s.chatHandler)

	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	mode := "demo"
	if s.store.Persistent() {
		mode = "persistent"
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Tax Free API is running",
		Data: map[string]interface{}{
			"status":    report.Status,
			"database":  report.Database,
			"mode":      mode,
			"timestamp": report.Timestamp,
			"version":   report.Version,
		},
	})
}

func (s *Server) createDiagnosisHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := handlers.DecodeAndDiagnose(body, models.DiagnosisSourceWeb)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Save(r.Context(), d); err != nil {
		utils.GetLogger().Error("Failed to store diagnosis", zap.String("id", d.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to store diagnosis")
		return
	}

	writeJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: d.Result.Recommendation,
		Data:    d,
	})
}

func (s *Server) defaultDiagnosisHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    diagnosis.DefaultResult(),
	})
}

func (s *Server) getDiagnosisHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagnosis(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: d})
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.loadDiagnosis(w, r)
	if !ok {
		return
	}

	entries := calendar.Build(d.Result, s.now())
	if r.URL.Query().Get("upcoming") == "true" {
		entries = calendar.Upcoming(d.Result, s.now(), queryInt(r, "limit", 0))
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: entries})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, http.StatusServiceUnavailable, "Report export is not configured")
		return
	}

	d, ok := s.loadDiagnosis(w, r)
	if !ok {
		return
	}

	link, err := s.export(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Report exported",
		Data:    link,
	})
}

func (s *Server) export(ctx context.Context, d *models.Diagnosis) (*s3service.PresignedURLResult, error) {
	now := s.now()
	return s.reports.UploadReport(ctx, d, Report{
		Diagnosis: d,
		Calendar:  calendar.Build(d.Result, now),
		CreatedAt: now.UTC(),
	}, 0)
}

func (s *Server) emailHandler(w http.ResponseWriter, r *http.Request) {
	if s.mailer == nil {
		writeError(w, http.StatusServiceUnavailable, "Email delivery is not configured")
		return
	}

	d, ok := s.loadDiagnosis(w, r)
	if !ok {
		return
	}

	var req EmailRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	to := strings.TrimSpace(req.Email)
	if to == "" {
		to = d.Email
	}
	if err := models.ValidateEmail(to); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := ses.ReportEmailParams{
		To:           to,
		Diagnosis:    d,
		Upcoming:     calendar.Upcoming(d.Result, s.now(), upcomingInEmail),
		DashboardURL: s.config.DashboardURL,
	}
	if s.reports != nil {
		if link, err := s.export(r.Context(), d); err == nil {
			params.ReportURL = link.URL
		} else {
			utils.GetLogger().Warn("Sending report email without attachment link", zap.Error(err))
		}
	}

	sent, err := s.mailer.SendDiagnosisReport(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Report email sent",
		Data:    sent,
	})
}

func (s *Server) listDiagnosesHandler(w http.ResponseWriter, r *http.Request) {
	diagnoses, err := s.store.Recent(r.Context(), queryInt(r, "limit", defaultListLimit))
	if err != nil {
		utils.GetLogger().Error("Error fetching diagnoses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch diagnoses")
		return
	}

	summaries := make([]models.DiagnosisSummary, 0, len(diagnoses))
	for _, d := range diagnoses {
		summaries = append(summaries, d.ToSummary())
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: summaries})
}

func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	check, err := utils.ValidateCSVStructure(string(content))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !check.Valid {
		message := "CSV has no data rows"
		if len(check.MissingColumns) > 0 {
			message = "Missing required columns: " + strings.Join(check.MissingColumns, ", ")
		}
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: message, Data: check})
		return
	}

	result, err := s.batches.Process(r.Context(), string(content))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: result.Inserted > 0,
		Message: result.Message,
		Data:    result,
	})
}

func (s *Server) knowledgeHandler(w http.ResponseWriter, r *http.Request) {
	entries := knowledge.FindRelevant(r.URL.Query().Get("q"))
	if entries == nil {
		entries = []knowledge.Entry{}
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: entries})
}

func (s *Server) knowledgeEntriesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: knowledge.All()})
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := req.DiagnosisResult
	if result == nil && req.DiagnosisID != "" {
		d, ok := s.findDiagnosis(w, r, req.DiagnosisID)
		if !ok {
			return
		}
		result = &d.Result
	}

	prompt, err := s.chat.Prepare(&req, result)
	switch {
	case errors.Is(err, models.ErrInvalidChatRequest):
		writeError(w, http.StatusBadRequest, chatErrorMessage(err))
		return
	case errors.Is(err, chat.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	events := chat.NewEventWriter(w)
	if err := s.chat.Stream(r.Context(), prompt, events.Chunk); err != nil {
		if r.Context().Err() != nil {
			return
		}
		_ = events.Error(chatStreamFailedMsg)
	}
	_ = events.Done()
}

// chatErrorMessage strips the sentinel prefix, leaving the user-facing part.
func chatErrorMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func (s *Server) loadDiagnosis(w http.ResponseWriter, r *http.Request) (*models.Diagnosis, bool) {
	return s.findDiagnosis(w, r, r.PathValue("id"))
}

func (s *Server) findDiagnosis(w http.ResponseWriter, r *http.Request, id string) (*models.Diagnosis, bool) {
	d, err := s.store.Get(r.Context(), id)
	if errors.Is(err, models.ErrDiagnosisNotFound) {
		writeError(w, http.StatusNotFound, "Diagnosis not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load diagnosis")
		return nil, false
	}
	return d, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.GetLogger().Warn("Failed to write response", zap.Error(err))
	}
}
