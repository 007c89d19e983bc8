package repositories

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types. Ids are zero padded so that
	// lexical key order is numeric id order.
	PostKeyPrefix      = "post:"
	CommentKeyPrefix   = "comment:"
	CommentIndexPrefix = "comment-id:"

	// Sequence keys for auto-incrementing IDs
	PostSeqKey    = "seq:post"
	CommentSeqKey = "seq:comment"
)

func postKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", PostKeyPrefix, id))
}

func commentPrefix(postID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:", CommentKeyPrefix, postID))
}

func commentKey(postID, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", CommentKeyPrefix, postID, id))
}

func commentIndexKey(id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", CommentIndexPrefix, id))
}

// seekLast returns a key sorting after every key with the given prefix,
// the starting point of a reverse iteration.
func seekLast(prefix []byte) []byte {
	return append(append([]byte{}, prefix...), 0xFF)
}

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int64, error) {
	var id int64
	item, err := txn.Get([]byte(seqKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		id = 1
	} else if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	} else {
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence %q", seqKey)
			}
			id = int64(binary.BigEndian.Uint64(val)) + 1
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, fmt.Errorf("failed to update sequence: %w", err)
	}

	return id, nil
}

// marshalEntity marshals an entity to JSON
func marshalEntity(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

func classifyBadger(err error) ErrorKind {
	switch {
	case errors.Is(err, badger.ErrConflict):
		return KindTransient
	case errors.Is(err, badger.ErrDBClosed), errors.Is(err, badger.ErrBlockedWrites):
		return KindUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransient
	}
	return KindInternal
}

// wrapBadger turns a badger failure into a StoreError. Errors that already
// carry a kind pass through unchanged.
func wrapBadger(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return NewStoreError(op, classifyBadger(err), err)
}
