package services

import (
	"context"
	"fmt"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/sirupsen/logrus"
)

// PostService wraps the post repository with validation and logging.
type PostService struct {
	posts repositories.PostRepository
	log   logrus.FieldLogger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, log logrus.FieldLogger) *PostService {
	return &PostService{
		posts: posts,
		log:   log.WithField("service", "post"),
	}
}

// Read returns every post, newest first.
func (s *PostService) Read(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		s.log.WithError(err).Error("list posts")
		return nil, err
	}
	s.log.WithField("count", len(posts)).Debug("listed posts")
	return posts, nil
}

// ReadByID returns one post. A missing post is a NotFound error.
func (s *PostService) ReadByID(ctx context.Context, id int64) (*models.Post, error) {
	if id <= 0 {
		return nil, invalidID(id)
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("get post")
		return nil, err
	}
	if post == nil {
		return nil, repositories.NotFound("post.read", "post", id)
	}
	return post, nil
}

// Create validates the request and stores a new post.
func (s *PostService) Create(ctx context.Context, req models.PostCreateRequest) (*models.Post, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	post := req.ToEntity()
	if err := post.Validate(); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.posts.Insert(ctx, post); err != nil {
		s.log.WithError(err).Error("insert post")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"post_id": post.ID,
		"author":  post.Author,
	}).Info("post created")
	return post, nil
}

// Update rewrites the title and content of an existing post.
func (s *PostService) Update(ctx context.Context, req models.PostUpdateRequest) (*models.Post, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	post := req.ToEntity()
	if err := models.ValidateFields(post, "Title", "Content"); err != nil {
		return nil, invalid(err)
	}
	n, err := s.posts.Update(ctx, post)
	if err != nil {
		s.log.WithError(err).WithField("post_id", req.ID).Error("update post")
		return nil, err
	}
	if n == 0 {
		return nil, repositories.NotFound("post.update", "post", req.ID)
	}

	s.log.WithField("post_id", post.ID).Info("post updated")
	return post, nil
}

// Delete removes a post together with its comments.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidID(id)
	}

	n, err := s.posts.Delete(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("post_id", id).Error("delete post")
		return err
	}
	if n == 0 {
		return repositories.NotFound("post.delete", "post", id)
	}

	s.log.WithField("post_id", id).Info("post deleted")
	return nil
}

// Search finds posts whose category fields contain the keyword, ignoring case.
func (s *PostService) Search(ctx context.Context, req models.PostSearchRequest) ([]*models.Post, error) {
	if err := models.Validate(req); err != nil {
		return nil, invalid(err)
	}

	posts, err := s.posts.Search(ctx, req.Category, req.Keyword)
	if err != nil {
		s.log.WithError(err).Error("search posts")
		return nil, fmt.Errorf("search %q: %w", req.Keyword, err)
	}
	s.log.WithFields(logrus.Fields{
		"category": req.Category,
		"keyword":  req.Keyword,
		"count":    len(posts),
	}).Debug("searched posts")
	return posts, nil
}
