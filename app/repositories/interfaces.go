package repositories

import (
	"context"

	"postboard/app/models"
)

// PostRepository defines the interface for post data access.
//
// GetByID returns (nil, nil) when no post has the given id. Update and Delete
// report the number of affected rows; a missing id affects zero rows.
type PostRepository interface {
	List(ctx context.Context) ([]*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Insert(ctx context.Context, post *models.Post) (int64, error)
	Update(ctx context.Context, post *models.Post) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Search(ctx context.Context, category models.SearchCategory, keyword string) ([]*models.Post, error)
}

// CommentRepository defines the interface for comment data access.
//
// ListByPost never returns a nil slice on success. Inserting a comment whose
// parent post does not exist fails with a constraint error.
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}
