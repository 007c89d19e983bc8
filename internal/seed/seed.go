// Package seed fills a store with generated posts and comments through the
// service layer, so seeded data passes the same validation as user input.
package seed

import (
	"context"
	"fmt"
	"strings"

	"postboard/app/models"
	"postboard/app/services"

	"github.com/brianvoe/gofakeit/v6"
)

// Result counts what a run created.
type Result struct {
	Posts    int
	Comments int
}

// Seeder generates fake content.
type Seeder struct {
	posts    *services.PostService
	comments *services.CommentService
	faker    *gofakeit.Faker

	// MaxComments bounds the comments generated per post.
	MaxComments int
}

// New creates a Seeder. A zero seed picks a random one.
func New(posts *services.PostService, comments *services.CommentService, seed int64) *Seeder {
	return &Seeder{
		posts:       posts,
		comments:    comments,
		faker:       gofakeit.New(seed),
		MaxComments: 5,
	}
}

// Run creates n posts, each with zero to MaxComments comments.
func (s *Seeder) Run(ctx context.Context, n int) (Result, error) {
	var res Result
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		post, err := s.posts.Create(ctx, s.postRequest())
		if err != nil {
			return res, fmt.Errorf("seed post %d: %w", i+1, err)
		}
		res.Posts++

		for c := s.faker.Number(0, s.MaxComments); c > 0; c-- {
			if _, err := s.comments.Register(ctx, s.commentRequest(post.ID)); err != nil {
				return res, fmt.Errorf("seed comment on post %d: %w", post.ID, err)
			}
			res.Comments++
		}
	}
	return res, nil
}

func (s *Seeder) postRequest() models.PostCreateRequest {
	return models.PostCreateRequest{
		Title:   clip(strings.TrimSuffix(s.faker.Sentence(s.faker.Number(3, 8)), "."), 100),
		Content: s.faker.Paragraph(s.faker.Number(1, 3), 4, 12, "\n\n"),
		Author:  clip(s.faker.Username(), 50),
	}
}

func (s *Seeder) commentRequest(postID int64) models.CommentRegisterRequest {
	return models.CommentRegisterRequest{
		PostID:  postID,
		Content: clip(s.faker.Sentence(s.faker.Number(4, 20)), 1000),
		Writer:  clip(s.faker.Name(), 50),
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
