// Command main runs the database seeder for inkpost.
package main

import (
	"flag"
	"log/slog"
	"os"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 8, "Maximum comments per post")
	maxLikes := flag.Int("likes", 15, "Maximum likes per post")
	maxDays := flag.Int("days", 90, "Spread post dates over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.IsProduction() {
		slog.Error("refusing to seed a production database")
		os.Exit(1)
	}
	middleware.SetLogger(middleware.NewLogger(cfg.Env))

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		MaxLikes:    *maxLikes,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
		RandSeed:    *randSeed,
	})
	if err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	middleware.Logger.Info("seed users share one password",
		slog.String("password", seed.DefaultPassword), slog.Int("users", summary.Users))
}
