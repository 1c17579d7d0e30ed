// CSV Processor Lambda entry point, triggered by uploads under uploads/
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	"taxfree-engine/internal/services/database"
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

	ctx := context.Background()

	files, err := s3service.NewService(ctx, cfg)
	if err != nil {
		panic("Failed to create S3 service: " + err.Error())
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}
	defer db.Close()

	handler := handlers.NewCSVProcessorHandler(files, database.NewDiagnosisRepository(db))

	lambda.Start(handler.Handle)
}
