package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/linkcomment/pkg/core/domain"
	"github.com/wadjakorntonsri/linkcomment/pkg/metrics"
	"github.com/wadjakorntonsri/linkcomment/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

var _ ports.LinkCommentRepository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database behind dbURL. Remote Turso URLs
// (libsql://, wss://, https://) go through the libsql driver with authToken
// attached; anything else is handed to the local sqlite driver.
func NewSQLiteRepository(dbURL, authToken string) (*SQLiteRepository, error) {
	driverName, dsn, err := resolveDSN(dbURL, authToken)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// NewFromDB wraps an already opened database.
func NewFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func resolveDSN(dbURL, authToken string) (driver, dsn string, err error) {
	if !isRemote(dbURL) {
		return "sqlite", dbURL, nil
	}
	if authToken == "" {
		return "libsql", dbURL, nil
	}

	u, err := url.Parse(dbURL)
	if err != nil {
		return "", "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", authToken)
	u.RawQuery = q.Encode()
	return "libsql", u.String(), nil
}

func isRemote(dbURL string) bool {
	for _, scheme := range []string{"libsql://", "wss://", "ws://", "https://", "http://"} {
		if strings.HasPrefix(dbURL, scheme) {
			return true
		}
	}
	return false
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// withConn runs fn on a connection reserved for this call only. The
// connection goes back to the pool on every exit path, including a panic
// in fn or cancellation of ctx.
func (r *SQLiteRepository) withConn(ctx context.Context, op domain.StoreOp, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		metrics.StoreOperationsTotal.WithLabelValues(string(op), "error").Inc()
		return &domain.StoreError{Op: op, Err: fmt.Errorf("acquire connection: %w", err)}
	}
	defer conn.Close()

	err = fn(conn)
	metrics.StoreOperationsTotal.WithLabelValues(string(op), metrics.Result(err)).Inc()
	if err != nil {
		return &domain.StoreError{Op: op, Err: err}
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, lc *domain.LinkComment) (string, error) {
	query := `INSERT INTO linkcomment (id, link, comment, username, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	var updatedAt sql.NullFloat64
	if lc.UpdatedAt != nil {
		updatedAt = sql.NullFloat64{Float64: *lc.UpdatedAt, Valid: true}
	}

	err := r.withConn(ctx, domain.OpInsert, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, query, lc.ID, lc.Link, lc.Comment, lc.Owner, lc.CreatedAt, updatedAt)
		return err
	})
	if err != nil {
		return "", err
	}
	return lc.ID, nil
}

// listColumns is the projection ListByOwner scans. Scan order below must
// follow it exactly.
const listColumns = "id, link, comment, created_at, updated_at"

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string) ([]domain.LinkComment, error) {
	query := `SELECT ` + listColumns + ` FROM linkcomment WHERE username = ?`

	items := []domain.LinkComment{}
	err := r.withConn(ctx, domain.OpList, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, owner)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var lc domain.LinkComment
			var updatedAt sql.NullFloat64
			if err := rows.Scan(&lc.ID, &lc.Link, &lc.Comment, &lc.CreatedAt, &updatedAt); err != nil {
				return err
			}
			if updatedAt.Valid {
				v := updatedAt.Float64
				lc.UpdatedAt = &v
			}
			lc.Owner = owner
			items = append(items, lc)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteRepository) DeleteByOwnerAndID(ctx context.Context, owner, id string) error {
	query := `DELETE FROM linkcomment WHERE username = ? AND id = ?`

	return r.withConn(ctx, domain.OpDelete, func(conn *sql.Conn) error {
		// Zero affected rows is fine: the id is unknown or not owned by owner.
		_, err := conn.ExecContext(ctx, query, owner, id)
		return err
	})
}
