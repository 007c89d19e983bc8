package services

import (
	"context"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/sirupsen/logrus"
)

// CommentService handles comment registration and listing.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
	log      logrus.FieldLogger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository, log logrus.FieldLogger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		log:      log.WithField("service", "comment"),
	}
}

// Register stores a comment on an existing post. Comments on unknown posts
// fail with NotFound before anything is written.
func (s *CommentService) Register(ctx context.Context, req models.CommentRegisterRequest) (*models.Comment, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}
	comment := req.ToEntity()
	if err := comment.Validate(); err != nil {
		return nil, invalid(err)
	}

	post, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, repositories.NotFound("comment.register", "post", req.PostID)
	}

	if _, err := s.comments.Insert(ctx, comment); err != nil {
		s.log.WithError(err).WithField("post_id", req.PostID).Error("insert comment")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"post_id":    comment.PostID,
	}).Info("comment registered")
	return comment, nil
}

// GetCommentList returns the comments of a post, oldest first. A post
// without comments yields an empty list.
func (s *CommentService) GetCommentList(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if postID <= 0 {
		return nil, invalidID(postID)
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		s.log.WithError(err).WithField("post_id", postID).Error("list comments")
		return nil, err
	}
	return comments, nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id int64) (*models.Comment, error) {
	if id <= 0 {
		return nil, invalidID(id)
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, repositories.NotFound("comment.get", "comment", id)
	}
	return comment, nil
}
