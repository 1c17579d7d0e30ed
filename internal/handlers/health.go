package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	appConfig "taxfree-engine/internal/config"
	"taxfree-engine/internal/services/database"
	"taxfree-engine/internal/utils"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db    Pinger
	close func()
}

// NewHealthHandler creates a health handler. A database that cannot be reached is
// reported as "not configured" instead of failing the Lambda cold start.
func NewHealthHandler(ctx context.Context, cfg *appConfig.Config) *HealthHandler {
	db, err := database.New(ctx, cfg)
	if err != nil {
		utils.GetLogger().Warn("Health check running without database", zap.Error(err))
		return &HealthHandler{}
	}
	return &HealthHandler{db: db, close: db.Close}
}

// NewHealthHandlerWith wires an explicit dependency; db may be nil.
func NewHealthHandlerWith(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Database  string `json:"database,omitempty"`
}

// Check builds the health report. It is shared with the HTTP server.
func (h *HealthHandler) Check(ctx context.Context) HealthResponse {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "taxfree-engine",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     getEnvOrDefault("STAGE", "unknown"),
	}

	// Check database connectivity
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	} else {
		response.Database = "not configured"
	}

	return response
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := h.Check(ctx)

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    corsHeaders("GET,OPTIONS"),
		Body:       marshalBody(response),
	}, nil
}

// Close cleans up resources.
func (h *HealthHandler) Close() {
	if h.close != nil {
		h.close()
	}
}
