// Command main runs the database seeder for the wiki admin backend.
package main

import (
	"flag"
	"log"

	"wikiadmin/internal/config"
	"wikiadmin/internal/database"
	"wikiadmin/internal/middleware"
	"wikiadmin/internal/seed"
)

func main() {
	preset := flag.String("preset", "minimal", "Seeder preset to apply (minimal, demo, large)")
	file := flag.String("file", "", "YAML preset file (defaults to the built-in presets)")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	withConfigs := flag.Bool("configs", true, "Create the preset site configs")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	presets, err := seed.LoadPresets(*file)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	opts, err := presets.Lookup(*preset)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if *shouldClean {
		opts.ShouldClean = true
	}
	log.Printf("Applying preset: %s (clean=%v)\n", *preset, opts.ShouldClean)

	// The seeder needs the schema regardless of DB_AUTO_MIGRATE.
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	res, err := seed.Seed(db, opts)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	if *withConfigs {
		res.Configs, err = seed.ApplyConfigs(db, presets.Configs)
		if err != nil {
			log.Fatalf("❌ Config seeding failed: %v", err)
		}
	}

	log.Printf("✅ Seeded %d admins, %d users, %d wikis, %d categories, %d articles, %d comments, %d configs",
		res.Admins, res.Users, res.Wikis, res.Categories, res.Articles, res.Comments, res.Configs)
}
