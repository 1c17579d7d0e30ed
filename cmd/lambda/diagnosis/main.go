// Diagnosis Lambda entry point
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/handlers"
	"taxfree-engine/internal/services/cache"
	"taxfree-engine/internal/services/database"
	"taxfree-engine/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	db, err := database.New(context.Background(), cfg)
	if err != nil {
		panic("Failed to connect to database: " + err.Error())
	}
	defer db.Close()

	store := cache.NewStore(
		cache.New(time.Duration(cfg.CacheTTLMinutes)*time.Minute),
		database.NewDiagnosisRepository(db),
	)

	lambda.Start(handlers.NewDiagnosisHandler(store).Handle)
}
