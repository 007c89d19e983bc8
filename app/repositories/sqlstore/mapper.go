package sqlstore

import (
	"postboard/app/models"

	"github.com/jmoiron/sqlx"
)

// structScanner is a single result row: *sqlx.Row or the current row of *sqlx.Rows.
type structScanner interface {
	StructScan(dest interface{}) error
}

func mapPost(row structScanner) (*models.Post, error) {
	var post models.Post
	if err := row.StructScan(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func mapComment(row structScanner) (*models.Comment, error) {
	var comment models.Comment
	if err := row.StructScan(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// collect maps every row and closes rows.
func collect[T any](rows *sqlx.Rows, mapRow func(structScanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		v, err := mapRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
