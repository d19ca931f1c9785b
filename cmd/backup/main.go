package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"hanzidrill/internal/config"
	"hanzidrill/internal/database"
	"hanzidrill/internal/repository"
	"hanzidrill/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportUser := exportCmd.Int64("user", 0, "Learner user ID (required)")
	exportOutput := exportCmd.String("output", "", "Output file path (default: words_<user>_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importUser := importCmd.Int64("user", 0, "Learner user ID (required)")
	importInput := importCmd.String("input", "", "Input file path (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	backupService := service.NewBackupService(repository.NewWordRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		requireUser(ctx, users, exportCmd, *exportUser)
		handleExport(ctx, backupService, *exportUser, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		requireUser(ctx, users, importCmd, *importUser)
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, *importUser, *importInput)

	default:
		printUsage()
		os.Exit(1)
	}
}

func requireUser(ctx context.Context, users *repository.UserRepository, fs *flag.FlagSet, userID int64) {
	if userID <= 0 {
		fmt.Println("Error: -user flag is required")
		fs.PrintDefaults()
		os.Exit(1)
	}
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		log.Fatalf("Failed to look up user %d: %v", userID, err)
	}
	if user == nil {
		log.Fatalf("User %d does not exist", userID)
	}
	log.Printf("Using word bank of %s (id %d)", user.Username, user.ID)
}

func handleExport(ctx context.Context, backupService *service.BackupService, userID int64, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("words_%d_%s.json", userID, timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting word bank to: %s", outputPath)
	if err := backupService.ExportToFile(ctx, userID, outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Printf("Export complete! File size: %.1f KB", float64(fileInfo.Size())/1024)
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, userID int64, inputPath string) {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	log.Printf("Importing word bank from: %s", inputPath)
	n, err := backupService.ImportFile(ctx, userID, inputPath)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete! %d words imported or updated", n)
}

func printUsage() {
	fmt.Println("Hanzi Drill Word Bank Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export a learner's word bank to a JSON file")
	fmt.Println("  backup import [options]    Import words from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -user <id>        Learner user ID (required)")
	fmt.Println("  -output <file>    Output file path (default: words_<user>_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -user <id>        Learner user ID (required)")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println()
	fmt.Println("Imported words replace existing entries with the same simplified form;")
	fmt.Println("other words in the bank are kept.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -user 1")
	fmt.Println("  backup export -user 1 -output mywords.json")
	fmt.Println("  backup import -user 1 -input mywords.json")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./hanzidrill.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL (MySQL needs parseTime=true)")
}
