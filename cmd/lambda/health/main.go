// Health Check Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	"taxfree-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	handler := handlers.NewHealthHandler(context.Background(), cfg)
	defer handler.Close()

	lambda.Start(handler.Handle)
}
