// Package sqlstore implements the repositories on top of a pooled SQL
// database. Every operation borrows one connection from the pool, runs one
// parameterized statement and hands the connection back on every exit path.
package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"postboard/app/repositories"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Store is the SQL data-access component shared by the post and comment stores.
type Store struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

// New creates a Store on an open connection pool.
func New(db *sqlx.DB, log logrus.FieldLogger) *Store {
	return &Store{db: db, log: log.WithField("component", "sqlstore")}
}

func (s *Store) Posts() *PostStore {
	return &PostStore{Store: s}
}

func (s *Store) Comments() *CommentStore {
	return &CommentStore{Store: s}
}

// withConn borrows a connection for the duration of fn. The connection is
// returned to the pool whether fn succeeds, fails or panics.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *sqlx.Conn) error) (err error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return wrap(op, err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = wrap(op, cerr)
		}
	}()

	if err := fn(conn); err != nil {
		return wrap(op, err)
	}
	return nil
}

// rebind converts the ? placeholders to the driver's bind style and logs
// the statement.
func (s *Store) rebind(op, query string) string {
	s.log.WithField("op", op).Debug(query)
	return s.db.Rebind(query)
}

func wrap(op string, err error) error {
	var se *repositories.StoreError
	if errors.As(err, &se) {
		return err
	}
	return repositories.NewStoreError(op, classify(err), err)
}

// classify maps driver errors onto repository error kinds.
func classify(err error) repositories.ErrorKind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03", "57014":
			return repositories.KindTransient
		}
		switch pqErr.Code.Class() {
		case "23":
			return repositories.KindConstraint
		case "08", "53", "57":
			return repositories.KindUnavailable
		}
		return repositories.KindInternal
	}

	switch {
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return repositories.KindUnavailable
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return repositories.KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return repositories.KindTransient
		}
		return repositories.KindUnavailable
	}
	return repositories.KindInternal
}
