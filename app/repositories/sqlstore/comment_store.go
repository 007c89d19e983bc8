package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/jmoiron/sqlx"
)

const (
	sqlSelectCommentsByPost = "SELECT * FROM COMMENTS WHERE POST_ID = ? ORDER BY ID"
	sqlSelectCommentByID    = "SELECT * FROM COMMENTS WHERE ID = ?"
	sqlInsertComment        = "INSERT INTO COMMENTS (POST_ID, CONTENT, WRITER) VALUES (?, ?, ?) RETURNING ID, CREATED_TIME, MODIFIED_TIME"
)

// CommentStore implements repositories.CommentRepository against the COMMENTS table.
// The POST_ID foreign key rejects comments on missing posts.
type CommentStore struct {
	*Store
}

func (s *CommentStore) Insert(ctx context.Context, comment *models.Comment) (int64, error) {
	err := s.withConn(ctx, "comment.insert", func(conn *sqlx.Conn) error {
		row := conn.QueryRowxContext(ctx, s.rebind("comment.insert", sqlInsertComment),
			comment.PostID, comment.Content, comment.Writer)
		return row.Scan(&comment.ID, &comment.CreatedTime, &comment.ModifiedTime)
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (s *CommentStore) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	var comment *models.Comment
	err := s.withConn(ctx, "comment.get", func(conn *sqlx.Conn) error {
		c, err := mapComment(conn.QueryRowxContext(ctx, s.rebind("comment.get", sqlSelectCommentByID), id))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		comment = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPost returns the comments of a post, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := s.withConn(ctx, "comment.list", func(conn *sqlx.Conn) error {
		rows, err := conn.QueryxContext(ctx, s.rebind("comment.list", sqlSelectCommentsByPost), postID)
		if err != nil {
			return err
		}
		comments, err = collect(rows, mapComment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

var _ repositories.CommentRepository = (*CommentStore)(nil)
