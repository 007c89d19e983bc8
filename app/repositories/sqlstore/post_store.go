package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/jmoiron/sqlx"
)

const (
	sqlSelectPosts    = "SELECT * FROM POSTS ORDER BY ID DESC"
	sqlSelectPostByID = "SELECT * FROM POSTS WHERE ID = ?"
	sqlInsertPost     = "INSERT INTO POSTS (TITLE, CONTENT, AUTHOR) VALUES (?, ?, ?) RETURNING ID, CREATED_TIME, MODIFIED_TIME"
	sqlUpdatePost     = "UPDATE POSTS SET TITLE = ?, CONTENT = ?, MODIFIED_TIME = CURRENT_TIMESTAMP WHERE ID = ? RETURNING AUTHOR, CREATED_TIME, MODIFIED_TIME"
	sqlDeletePost     = "DELETE FROM POSTS WHERE ID = ?"

	sqlSearchTitle        = "SELECT * FROM POSTS WHERE UPPER(TITLE) LIKE UPPER(?) ORDER BY ID DESC"
	sqlSearchContent      = "SELECT * FROM POSTS WHERE UPPER(CONTENT) LIKE UPPER(?) ORDER BY ID DESC"
	sqlSearchTitleContent = "SELECT * FROM POSTS WHERE UPPER(TITLE) LIKE UPPER(?) OR UPPER(CONTENT) LIKE UPPER(?) ORDER BY ID DESC"
	sqlSearchAuthor       = "SELECT * FROM POSTS WHERE UPPER(AUTHOR) LIKE UPPER(?) ORDER BY ID DESC"
)

// PostStore implements repositories.PostRepository against the POSTS table.
type PostStore struct {
	*Store
}

// List returns every post, newest id first.
func (s *PostStore) List(ctx context.Context) ([]*models.Post, error) {
	return s.queryPosts(ctx, "post.list", sqlSelectPosts)
}

// Search returns posts whose fields in category contain keyword.
func (s *PostStore) Search(ctx context.Context, category models.SearchCategory, keyword string) ([]*models.Post, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	switch category {
	case models.SearchTitle:
		return s.queryPosts(ctx, "post.search", sqlSearchTitle, pattern)
	case models.SearchContent:
		return s.queryPosts(ctx, "post.search", sqlSearchContent, pattern)
	case models.SearchTitleContent:
		return s.queryPosts(ctx, "post.search", sqlSearchTitleContent, pattern, pattern)
	case models.SearchAuthor:
		return s.queryPosts(ctx, "post.search", sqlSearchAuthor, pattern)
	}
	return nil, repositories.NewStoreError("post.search", repositories.KindInternal,
		fmt.Errorf("unknown search category %q", category))
}

func (s *PostStore) queryPosts(ctx context.Context, op, query string, args ...interface{}) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.withConn(ctx, op, func(conn *sqlx.Conn) error {
		rows, err := conn.QueryxContext(ctx, s.rebind(op, query), args...)
		if err != nil {
			return err
		}
		posts, err = collect(rows, mapPost)
		return err
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByID returns the post with id, or nil when there is none.
func (s *PostStore) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post *models.Post
	err := s.withConn(ctx, "post.get", func(conn *sqlx.Conn) error {
		p, err := mapPost(conn.QueryRowxContext(ctx, s.rebind("post.get", sqlSelectPostByID), id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		post = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Insert adds a post and fills in the generated ID and timestamps.
func (s *PostStore) Insert(ctx context.Context, post *models.Post) (int64, error) {
	err := s.withConn(ctx, "post.insert", func(conn *sqlx.Conn) error {
		row := conn.QueryRowxContext(ctx, s.rebind("post.insert", sqlInsertPost),
			post.Title, post.Content, post.Author)
		return row.Scan(&post.ID, &post.CreatedTime, &post.ModifiedTime)
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// Update rewrites title and content. The post is refreshed with the stored
// author and timestamps.
func (s *PostStore) Update(ctx context.Context, post *models.Post) (int64, error) {
	var affected int64
	err := s.withConn(ctx, "post.update", func(conn *sqlx.Conn) error {
		row := conn.QueryRowxContext(ctx, s.rebind("post.update", sqlUpdatePost),
			post.Title, post.Content, post.ID)
		err := row.Scan(&post.Author, &post.CreatedTime, &post.ModifiedTime)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		affected = 1
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Delete removes a post. Its comments go with it through ON DELETE CASCADE.
func (s *PostStore) Delete(ctx context.Context, id int64) (int64, error) {
	var affected int64
	err := s.withConn(ctx, "post.delete", func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, s.rebind("post.delete", sqlDeletePost), id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ repositories.PostRepository = (*PostStore)(nil)
