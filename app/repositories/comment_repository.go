package repositories

import (
	"context"
	"errors"
	"fmt"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Insert stores a comment. The parent post must exist in the same
// transaction, otherwise the insert fails with KindConstraint.
func (r *BadgerCommentRepository) Insert(ctx context.Context, comment *models.Comment) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapBadger("comment.insert", err)
	}

	stored := *comment
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(postKey(stored.PostID)); errors.Is(err, badger.ErrKeyNotFound) {
			return NewStoreError("comment.insert", KindConstraint,
				fmt.Errorf("post %d does not exist", stored.PostID))
		} else if err != nil {
			return err
		}

		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		stored.ID = id
		stored.BeforeCreate()

		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}

		// Save comment with post ID in key for efficient listing
		key := commentKey(stored.PostID, id)
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(id), key)
	})
	if err != nil {
		return 0, wrapBadger("comment.insert", err)
	}

	*comment = stored
	return 1, nil
}

// GetByID retrieves a comment by ID, nil when it does not exist.
func (r *BadgerCommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapBadger("comment.get", err)
	}

	var comment *models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		idx, err := txn.Get(commentIndexKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := idx.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var c models.Comment
		if err := item.Value(func(val []byte) error {
			return unmarshalEntity(val, &c)
		}); err != nil {
			return err
		}
		comment = &c
		return nil
	})
	if err != nil {
		return nil, wrapBadger("comment.get", err)
	}
	return comment, nil
}

// ListByPost retrieves all comments for a post, oldest first.
func (r *BadgerCommentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapBadger("comment.list", err)
	}

	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		comments, err = listComments(txn, postID)
		return err
	})
	if err != nil {
		return nil, wrapBadger("comment.list", err)
	}
	return comments, nil
}

func listComments(txn *badger.Txn, postID int64) ([]*models.Comment, error) {
	comments := make([]*models.Comment, 0)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := commentPrefix(postID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var comment models.Comment
		err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &comment)
		})
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, nil
}

var _ CommentRepository = (*BadgerCommentRepository)(nil)
