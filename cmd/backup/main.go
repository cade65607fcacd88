package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"rpsarena/internal/config"
	"rpsarena/internal/database"
	"rpsarena/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	exportUpload := exportCmd.Bool("upload", false, "Upload the export to BACKUP_S3_BUCKET instead of writing a file")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Clear existing data before import (WARNING: destructive)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()
	cfg.ConfigureLogging()

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

	ctx := context.Background()
	backupService := service.NewBackupService(db)

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		if *exportUpload {
			handleUpload(ctx, cfg, backupService)
			return
		}
		handleExport(ctx, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, *importInput, *importClear)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	// Generate default filename if not provided
	if outputPath == "" {
		timestamp := time.Now().Format("20060102_150405")
		outputPath = fmt.Sprintf("backup_%s.json", timestamp)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Infof("Exporting database to: %s", outputPath)
	if err := backupService.ExportToFile(ctx, outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	// Get file size
	fileInfo, err := os.Stat(outputPath)
	if err == nil {
		log.Infof("Export complete! File size: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}
}

func handleUpload(ctx context.Context, cfg *config.Config, backupService *service.BackupService) {
	if cfg.BackupS3Bucket == "" {
		log.Fatal("BACKUP_S3_BUCKET must be set to upload a backup")
	}

	uploader, err := service.NewBackupUploader(ctx, cfg.AWSRegion, cfg.BackupS3Bucket, cfg.BackupS3Prefix)
	if err != nil {
		log.Fatalf("Failed to create uploader: %v", err)
	}

	location, err := backupService.ExportAndUpload(ctx, uploader)
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	log.Infof("Export complete! Stored at %s", location)
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData bool) {
	// Check if file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if clearData {
		fmt.Print("WARNING: This will delete all existing data. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Info("Import cancelled")
			return
		}
	}

	log.Infof("Importing database from: %s", inputPath)
	if err := backupService.ImportFile(ctx, inputPath, clearData); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Info("Import complete!")
}

func printUsage() {
	fmt.Println("RPS Arena Database Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export database to JSON file")
	fmt.Println("  backup import [options]    Import database from JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println("  -upload           Upload to BACKUP_S3_BUCKET under BACKUP_S3_PREFIX")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -clear            Clear existing data before import (WARNING: destructive)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  backup export -output mybackup.json")
	fmt.Println("  backup export -upload")
	fmt.Println("  backup import -input backup.json -clear")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./rpsarena.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  AWS_REGION       Region of the backup bucket (default: us-east-1)")
}
