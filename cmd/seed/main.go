// Command main runs the database seeder for the blog API.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.NumUsers, "users", opts.NumUsers, "Number of users to create")
	flag.IntVar(&opts.NumBlogs, "blogs", opts.NumBlogs, "Number of blogs to create")
	flag.BoolVar(&opts.Clean, "clean", opts.Clean, "Clean database before seeding")
	flag.Float64Var(&opts.PublishRatio, "publish-ratio", opts.PublishRatio, "Fraction of blogs to publish")
	flag.Parse()

	log.Println("Database seeder")
	log.Printf("Target: %d users, %d blogs, clean=%v\n", opts.NumUsers, opts.NumBlogs, opts.Clean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := seed.Run(db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
