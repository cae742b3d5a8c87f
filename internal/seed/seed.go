// Package seed fills a development database with demo users, threads and likes.
// Everything is written through the thread services so counters stay consistent.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/repository"
	"campus/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much data a run creates.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	// MaxDepth bounds how deep generated reply chains go.
	MaxDepth     int
	LikesPerPost int
	// Seed makes runs reproducible; 0 picks a time based seed.
	Seed int64
}

// DefaultOptions is a small but fully threaded data set.
func DefaultOptions() Options {
	return Options{Users: 20, Posts: 40, CommentsPerPost: 6, MaxDepth: 4, LikesPerPost: 5}
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

type Seeder struct {
	db      *gorm.DB
	opts    Options
	faker   *gofakeit.Faker
	users   repository.UserRepository
	threads *service.ThreadService
	likes   *service.LikeService
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db, nil)
	return &Seeder{
		db:      db,
		opts:    opts,
		faker:   gofakeit.New(opts.Seed),
		users:   users,
		threads: service.NewThreadService(posts, users),
		likes:   service.NewLikeService(repository.NewLikeRepository(db, nil), posts),
	}
}

// ClearAll removes every like, post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []interface{}{&models.Like{}, &models.Post{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, then posts with comment trees and likes.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	users, err := s.seedUsers(ctx)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		post, err := s.threads.CreatePost(ctx, service.CreatePostInput{
			AuthorID:     author.ID,
			AuthorHandle: author.Handle,
			Content:      s.faker.Paragraph(1, 3, 12, " "),
			Media:        s.media(),
		})
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		n, err := s.seedThread(ctx, post, users)
		sum.Comments += n
		if err != nil {
			return sum, err
		}

		n, err = s.seedLikes(ctx, post, users)
		sum.Likes += n
		if err != nil {
			return sum, err
		}
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
	)
	return sum, nil
}

func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, error) {
	users := make([]*models.User, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		handle := fmt.Sprintf("%s%d", strings.ToLower(s.faker.Username()), i)
		if len(handle) > 64 {
			handle = handle[:64]
		}
		user := &models.User{
			Handle: handle,
			Email:  fmt.Sprintf("%s@%s", handle, s.faker.DomainName()),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return users, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

// seedThread adds comments under post, each answering either the post or a
// random earlier comment that is still shallower than MaxDepth.
func (s *Seeder) seedThread(ctx context.Context, post *models.Post, users []*models.User) (int, error) {
	var open []*models.Post
	created := 0

	for i := 0; i < s.opts.CommentsPerPost; i++ {
		in := service.CreateCommentInput{
			PostID:   post.ID,
			AuthorID: users[s.faker.Number(0, len(users)-1)].ID,
			Content:  s.faker.Sentence(s.faker.Number(3, 15)),
		}
		if len(open) > 0 && s.faker.Bool() {
			parent := open[s.faker.Number(0, len(open)-1)]
			in.ParentCommentID = &parent.ID
		}

		comment, err := s.threads.CreateComment(ctx, in)
		if err != nil {
			return created, fmt.Errorf("create comment on post %d: %w", post.ID, err)
		}
		created++
		if comment.CommentDepth < s.opts.MaxDepth {
			open = append(open, comment)
		}
	}
	return created, nil
}

func (s *Seeder) seedLikes(ctx context.Context, post *models.Post, users []*models.User) (int, error) {
	want := s.opts.LikesPerPost
	if want > len(users) {
		want = len(users)
	}

	liked := make(map[uint]struct{}, want)
	for len(liked) < want {
		user := users[s.faker.Number(0, len(users)-1)]
		if _, ok := liked[user.ID]; ok {
			continue
		}
		if _, err := s.likes.ToggleLike(ctx, post.ID, user.ID); err != nil {
			return len(liked), fmt.Errorf("like post %d: %w", post.ID, err)
		}
		liked[user.ID] = struct{}{}
	}
	return len(liked), nil
}

func (s *Seeder) media() []string {
	if s.faker.Number(0, 3) != 0 {
		return nil
	}
	return []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/800", s.faker.UUID())}
}
