package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/cache"
	"taxfree-engine/internal/services/diagnosis"
	"taxfree-engine/internal/utils"
)

// DiagnosisRequest is the body of a diagnosis call.
type DiagnosisRequest struct {
	Answers models.DiagnosisAnswers `json:"answers"`
	Email   string                  `json:"email,omitempty"`
}

// DiagnosisHandler serves POST /diagnosis and GET /diagnosis/{id} behind API Gateway.
type DiagnosisHandler struct {
	store *cache.Store
}

// NewDiagnosisHandler creates a diagnosis handler over store.
func NewDiagnosisHandler(store *cache.Store) *DiagnosisHandler {
	return &DiagnosisHandler{store: store}
}

// Handle dispatches on the HTTP method.
func (h *DiagnosisHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("GET,POST,OPTIONS")

	switch request.HTTPMethod {
	case http.MethodOptions:
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: headers}, nil
	case http.MethodPost:
		return h.create(ctx, headers, request.Body)
	case http.MethodGet:
		return h.get(ctx, headers, request.PathParameters["id"])
	default:
		return errorResponse(headers, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *DiagnosisHandler) create(ctx context.Context, headers map[string]string, body string) (events.APIGatewayProxyResponse, error) {
	d, err := DecodeAndDiagnose([]byte(body), models.DiagnosisSourceLambda)
	if err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	if err := h.store.Save(ctx, d); err != nil {
		utils.GetLogger().Error("Failed to store diagnosis", zap.String("id", d.ID), zap.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to store diagnosis")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusCreated,
		Headers:    headers,
		Body:       marshalBody(d),
	}, nil
}

func (h *DiagnosisHandler) get(ctx context.Context, headers map[string]string, id string) (events.APIGatewayProxyResponse, error) {
	if id == "" {
		return errorResponse(headers, http.StatusBadRequest, "diagnosis id is required")
	}

	d, err := h.store.Get(ctx, id)
	if errors.Is(err, models.ErrDiagnosisNotFound) {
		return errorResponse(headers, http.StatusNotFound, err.Error())
	}
	if err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to load diagnosis")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       marshalBody(d),
	}, nil
}

// DecodeAndDiagnose reads a DiagnosisRequest, validates it and computes the diagnosis.
// A body without an "answers" wrapper is read as bare answers.
func DecodeAndDiagnose(body []byte, source models.DiagnosisSource) (*models.Diagnosis, error) {
	var req DiagnosisRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.New("invalid request body")
	}
	if req.Answers.Industry == "" {
		if err := json.Unmarshal(body, &req.Answers); err != nil {
			return nil, errors.New("invalid request body")
		}
	}

	answers := req.Answers
	if answers.InterestArea == "" {
		answers.InterestArea = models.InterestAreaGeneral
	}
	if err := models.ValidateAnswers(&answers); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if email != "" {
		if err := models.ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	d := diagnosis.NewRecord(answers, source)
	d.Email = email
	return d, nil
}
