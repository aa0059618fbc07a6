package seed

import (
	"fmt"
	"log/slog"

	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int
	MaxLikes    int
	MaxDays     int
	ShouldClean bool
	// RandSeed makes runs reproducible; zero picks a random seed.
	RandSeed int64
}

// Summary reports what a seeding run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seed populates the database with users and posts.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	if opts.NumUsers < 1 {
		return nil, fmt.Errorf("at least one user is required")
	}
	if opts.MaxComments < 0 || opts.MaxLikes < 0 {
		return nil, fmt.Errorf("comment and like limits must not be negative")
	}

	middleware.Logger.Info("starting database seeding",
		slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f, err := NewFactory(db, opts.RandSeed, opts.MaxDays)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
	}

	summary := &Summary{Users: len(users)}
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := range opts.NumPosts {
		p := f.BuildPost(users[i%len(users)], users, opts.MaxComments, opts.MaxLikes)
		summary.Comments += len(p.Comments)
		summary.Likes += len(p.Likes)
		posts = append(posts, p)
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)

	middleware.Logger.Info("database seeding completed",
		slog.Int("users", summary.Users), slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments), slog.Int("likes", summary.Likes))
	return summary, nil
}

func clearData(db *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE posts, users CASCADE`).Error
	}
	if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error
}
