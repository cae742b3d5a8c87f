// Command seed populates the database with demo users, threads and likes.
package main

import (
	"context"
	"flag"
	"log"

	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	posts := flag.Int("posts", defaults.Posts, "Number of top-level posts to create")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Comments and replies per post")
	depth := flag.Int("depth", defaults.MaxDepth, "Maximum reply depth")
	likes := flag.Int("likes", defaults.LikesPerPost, "Likes per post")
	seedValue := flag.Int64("seed", 0, "Random seed (0 for time based)")
	shouldClean := flag.Bool("clean", false, "Remove existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	s := seed.NewSeeder(db, seed.Options{
		Users:           *users,
		Posts:           *posts,
		CommentsPerPost: *comments,
		MaxDepth:        *depth,
		LikesPerPost:    *likes,
		Seed:            *seedValue,
	})

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d posts, %d comments, %d likes", sum.Users, sum.Posts, sum.Comments, sum.Likes)
}
