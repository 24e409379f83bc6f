package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/quizbrain/internal/achievements"
	"github.com/example/quizbrain/internal/database"
	"github.com/example/quizbrain/internal/dedup"
	"github.com/example/quizbrain/internal/engine"
	"github.com/example/quizbrain/internal/importer"
	"github.com/example/quizbrain/internal/scheduler"
	"github.com/example/quizbrain/internal/stats"
	"github.com/joho/godotenv"
)

func main() {
	importPath := flag.String("import", "", "import questions from an Excel or CSV file and exit")
	scanThreshold := flag.Float64("scan", 0, "run a one-off similarity scan at the given threshold and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()

	if *importPath != "" {
		config := importer.DefaultImportConfig()
		config.FilePath = *importPath
		result, err := importer.ImportQuestions(ctx, config)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Processed %d rows: %d added, %d duplicates, %d skipped\n",
			result.TotalProcessed, result.Added, result.Duplicates, result.Skipped)
		for _, e := range result.Errors {
			fmt.Println("  " + e)
		}
		return
	}

	// The achievement catalog is built once at startup; category
	// mastery entries come from the tags present in the bank.
	achievementSettings := achievements.DefaultSettings()
	categories, err := database.NewQuestionRepository().Categories(ctx)
	if err != nil {
		log.Fatalf("Failed to load question categories: %v", err)
	}
	achievementSettings.MasteryCategories = categories

	eng := engine.New(achievementSettings, stats.DefaultSettings())

	if *scanThreshold > 0 {
		pairs, err := eng.SimilarQuestions(ctx, *scanThreshold)
		if err != nil {
			log.Fatalf("Similarity scan failed: %v", err)
		}
		for _, p := range pairs {
			fmt.Printf("%.1f%%  #%d %q  ~  #%d %q\n", p.Similarity, p.ID1, p.Text1, p.ID2, p.Text2)
		}
		fmt.Printf("%d pairs at or above threshold %.2f\n", len(pairs), *scanThreshold)
		return
	}

	maintenance := scheduler.New(nil, nil, dedup.NewDetector(database.NewQuestionRepository()))
	maintenance.Start()
	defer maintenance.Stop()

	log.Println("quizbrain engine started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down", sig)
}
