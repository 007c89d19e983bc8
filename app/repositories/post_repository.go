package repositories

import (
	"context"
	"errors"

	"postboard/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// List returns every post, newest id first.
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.scan(ctx, "post.list", func(*models.Post) bool { return true })
}

// Search returns the posts matching keyword in category, newest id first.
func (r *BadgerPostRepository) Search(ctx context.Context, category models.SearchCategory, keyword string) ([]*models.Post, error) {
	return r.scan(ctx, "post.search", func(p *models.Post) bool {
		return p.Matches(category, keyword)
	})
}

func (r *BadgerPostRepository) scan(ctx context.Context, op string, keep func(*models.Post) bool) ([]*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapBadger(op, err)
	}

	posts := make([]*models.Post, 0)
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(seekLast(prefix)); it.ValidForPrefix(prefix); it.Next() {
			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return err
			}
			if keep(&post) {
				posts = append(posts, &post)
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapBadger(op, err)
	}
	return posts, nil
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapBadger("post.get", err)
	}

	var post *models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		p, err := loadPost(txn, id)
		post = p
		return err
	})
	if err != nil {
		return nil, wrapBadger("post.get", err)
	}
	return post, nil
}

// Insert stores a new post and assigns its ID and timestamps.
func (r *BadgerPostRepository) Insert(ctx context.Context, post *models.Post) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapBadger("post.insert", err)
	}

	stored := *post
	err := r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		stored.ID = id
		stored.BeforeCreate()

		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}
		return txn.Set(postKey(id), data)
	})
	if err != nil {
		return 0, wrapBadger("post.insert", err)
	}

	*post = stored
	return 1, nil
}

// Update rewrites the title and content of an existing post.
func (r *BadgerPostRepository) Update(ctx context.Context, post *models.Post) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapBadger("post.update", err)
	}

	var updated *models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		existing, err := loadPost(txn, post.ID)
		if err != nil || existing == nil {
			return err
		}

		existing.Title = post.Title
		existing.Content = post.Content
		existing.Touch()

		data, err := marshalEntity(existing)
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(existing.ID), data); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return 0, wrapBadger("post.update", err)
	}
	if updated == nil {
		return 0, nil
	}

	*post = *updated
	return 1, nil
}

// Delete removes a post together with its comments.
func (r *BadgerPostRepository) Delete(ctx context.Context, id int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, wrapBadger("post.delete", err)
	}

	var affected int64
	err := r.db.Update(func(txn *badger.Txn) error {
		existing, err := loadPost(txn, id)
		if err != nil || existing == nil {
			return err
		}

		comments, err := listComments(txn, id)
		if err != nil {
			return err
		}
		for _, c := range comments {
			if err := txn.Delete(commentKey(id, c.ID)); err != nil {
				return err
			}
			if err := txn.Delete(commentIndexKey(c.ID)); err != nil {
				return err
			}
		}

		if err := txn.Delete(postKey(id)); err != nil {
			return err
		}
		affected = 1
		return nil
	})
	if err != nil {
		return 0, wrapBadger("post.delete", err)
	}
	return affected, nil
}

// loadPost reads a post inside txn, returning nil when it does not exist.
func loadPost(txn *badger.Txn, id int64) (*models.Post, error) {
	item, err := txn.Get(postKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var post models.Post
	if err := item.Value(func(val []byte) error {
		return unmarshalEntity(val, &post)
	}); err != nil {
		return nil, err
	}
	return &post, nil
}

var _ PostRepository = (*BadgerPostRepository)(nil)
