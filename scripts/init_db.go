package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"taxfree-engine/internal/config"
	"taxfree-engine/internal/models"
	"taxfree-engine/internal/services/database"
	"taxfree-engine/internal/services/diagnosis"
)

func main() {
	reset := flag.Bool("reset", false, "delete every stored diagnosis")
	seed := flag.Bool("seed", false, "insert sample diagnoses")
	flag.Parse()

	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("📡 Connecting to PostgreSQL...")
	db, err := connect(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database successfully!")

	fmt.Println("🚀 Creating schema...")
	if err := db.EnsureSchema(ctx); err != nil {
		fmt.Printf("❌ Failed to create schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Schema is up to date")

	repo := database.NewDiagnosisRepository(db)

	if *reset {
		deleted, err := repo.DeleteAll(ctx)
		if err != nil {
			fmt.Printf("❌ Failed to clear diagnoses: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🧹 Deleted %d diagnoses\n", deleted)
	}

	if *seed {
		result, err := repo.BulkInsert(ctx, sampleDiagnoses())
		if err != nil {
			fmt.Printf("❌ Failed to seed diagnoses: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("🌱 Seeded %d diagnoses (%d failed)\n", result.InsertedCount, result.FailedCount)
	}

	fmt.Println()
	fmt.Println("🔍 Recent diagnoses:")
	recent, err := repo.ListRecent(ctx, 10)
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not list diagnoses: %v\n", err)
	}
	for _, d := range recent {
		fmt.Printf("   %s  %s\n", d.ID, d.Result.Recommendation)
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
}

// connect prefers DATABASE_URL and falls back to the DB_* settings.
func connect(ctx context.Context) (*database.DB, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return database.NewFromURL(ctx, url)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.New(ctx, cfg)
}

func sampleDiagnoses() []*models.Diagnosis {
	samples := []models.DiagnosisAnswers{
		diagnosis.DefaultAnswers(),
		{
			Industry:      models.IndustryFoodStore,
			TaxStatus:     models.TaxStatusGeneral,
			Revenue:       models.IntInput(15000),
			EmployeeCount: models.IntInput(3),
			BusinessAge:   models.BusinessAgeThreePlus,
			Bookkeeping:   models.BookkeepingAccountant,
			InterestArea:  models.InterestAreaVAT,
		},
		{
			Industry:      models.IndustryEducation,
			TaxStatus:     models.TaxStatusExempt,
			Revenue:       models.IntInput(6000),
			EmployeeCount: models.IntInput(0),
			BusinessAge:   models.BusinessAgeUnderOneYear,
			Bookkeeping:   models.BookkeepingSimple,
			InterestArea:  models.InterestAreaIncomeTax,
		},
	}

	out := make([]*models.Diagnosis, 0, len(samples))
	for _, a := range samples {
		d := diagnosis.NewRecord(a, models.DiagnosisSourceWeb)
		d.BatchID = "seed"
		out = append(out, d)
	}
	return out
}
