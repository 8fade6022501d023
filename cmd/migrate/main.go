// Command migrate applies the schema for the backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"wikiadmin/internal/config"
	"wikiadmin/internal/database"
	"wikiadmin/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate/main.go <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)
	// Schema changes only happen through the explicit command below.
	cfg.DBAutoMigrate = false

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Println("migrations applied")
	case "status":
		pending := status(db)
		log.Printf("driver=%s tables=%d missing=%d", db.Name(), len(database.PersistentModels()), len(pending))
		for _, table := range pending {
			log.Printf("missing: %s", table)
		}
	default:
		return usage()
	}
	return nil
}

// status lists the registry tables that do not exist yet.
func status(db *gorm.DB) []string {
	var missing []string
	for _, model := range database.PersistentModels() {
		if db.Migrator().HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			missing = append(missing, fmt.Sprintf("%T", model))
			continue
		}
		missing = append(missing, stmt.Schema.Table)
	}
	return missing
}
