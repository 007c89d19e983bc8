package seed

import (
	"context"
	"testing"

	"postboard/app/repositories/mock"
	"postboard/app/services"
	"postboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSeeder(t *testing.T, seed int64) (*Seeder, *mock.PostRepository, *mock.CommentRepository) {
	logger := logging.Discard()
	posts := mock.NewPostRepository()
	comments := mock.NewCommentRepository(posts)
	return New(services.NewPostService(posts, logger), services.NewCommentService(comments, posts, logger), seed), posts, comments
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	seeder, posts, comments := setupSeeder(t, 42)

	res, err := seeder.Run(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Posts)

	stored, err := posts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 10)

	total := 0
	for _, p := range stored {
		assert.NotEmpty(t, p.Title)
		assert.LessOrEqual(t, len([]rune(p.Title)), 100)
		assert.LessOrEqual(t, len([]rune(p.Author)), 50)

		list, err := comments.ListByPost(ctx, p.ID)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(list), seeder.MaxComments)
		total += len(list)
	}
	assert.Equal(t, res.Comments, total)
}

func TestRunIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, postsA, _ := setupSeeder(t, 7)
	b, postsB, _ := setupSeeder(t, 7)

	resA, err := a.Run(ctx, 3)
	require.NoError(t, err)
	resB, err := b.Run(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, resA, resB)

	listA, _ := postsA.List(ctx)
	listB, _ := postsB.List(ctx)
	for i := range listA {
		assert.Equal(t, listA[i].Title, listB[i].Title)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	seeder, _, _ := setupSeeder(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := seeder.Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Posts)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "abc", clip("abc", 5))
	assert.Equal(t, "ab", clip("ab cd", 3))
	assert.Equal(t, "가나", clip("가나다", 2))
}
