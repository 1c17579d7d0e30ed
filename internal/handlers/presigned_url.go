package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	s3service "taxfree-engine/internal/services/s3"
	"taxfree-engine/internal/utils"
)

const uploadURLExpiryMinutes = 60

// UploadPresigner issues upload links for CSV batches.
type UploadPresigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler handles requests for generating presigned S3 URLs.
type PresignedURLHandler struct {
	presigner UploadPresigner
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(presigner UploadPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: presigner}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()
	headers := corsHeaders("GET,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = "diagnoses_" + uuid.New().String()[:8] + ".csv"
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorResponse(headers, http.StatusBadRequest, "Only CSV files are allowed")
	}

	key := UploadKey(filename, time.Now())

	link, err := h.presigner.GeneratePresignedUploadURL(ctx, key, "text/csv", uploadURLExpiryMinutes)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body: marshalBody(PresignedURLResponse{
			UploadURL: link.URL,
			S3Key:     link.Key,
			ExpiresIn: uploadURLExpiryMinutes * 60,
		}),
	}, nil
}

// UploadKey is uploads/{yyyy/mm/dd}/{uuid}_{filename}.
func UploadKey(filename string, now time.Time) string {
	return s3service.UploadPrefix + now.UTC().Format("2006/01/02") + "/" + uuid.New().String() + "_" + sanitizeFilename(filename)
}

// sanitizeFilename keeps ASCII letters, digits, '.', '-' and '_', at most 100 bytes.
func sanitizeFilename(filename string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return -1
	}, filename)
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body: marshalBody(ErrorBody{
			Error:   http.StatusText(statusCode),
			Message: message,
		}),
	}, nil
}
