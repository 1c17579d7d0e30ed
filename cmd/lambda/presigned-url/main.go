// Presigned URL Lambda entry point
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	s3service "taxfree-engine/internal/services/s3"
	"taxfree-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	presigner, err := s3service.NewService(context.Background(), cfg)
	if err != nil {
		panic("Failed to create S3 service: " + err.Error())
	}

	lambda.Start(handlers.NewPresignedURLHandler(presigner).Handle)
}
