package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"contalink/pkg/logger"
)

var tracer = otel.Tracer("contalink/postgres")

// Querier is the query surface shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// TxOptions configures a read transaction.
type TxOptions struct {
	// IsolationLevel: pgx.RepeatableRead gives page and count one snapshot.
	IsolationLevel pgx.TxIsoLevel

	// StatementTimeout protects against runaway queries (0 = none).
	StatementTimeout time.Duration
}

// DefaultTxOptions returns snapshot reads with a 30s statement timeout.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel:   pgx.RepeatableRead,
		StatementTimeout: 30 * time.Second,
	}
}

// TxManager runs read-only transactions on one pool.
type TxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager creates a transaction manager for pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// ReadOnly executes fn in a read-only transaction. The transaction is
// always rolled back; nothing in it can write.
func (m *TxManager) ReadOnly(ctx context.Context, opts TxOptions, fn func(ctx context.Context, q Querier) error) error {
	ctx, span := tracer.Start(ctx, "transaction.read_only",
		trace.WithAttributes(
			attribute.String("tx.isolation", string(opts.IsolationLevel)),
		))
	defer span.End()

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   opts.IsolationLevel,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// Use background context so rollback completes after cancellation.
		if rbErr := tx.Rollback(context.Background()); rbErr != nil && rbErr != pgx.ErrTxClosed {
			logger.Error(ctx, "rollback failed", "error", rbErr)
		}
	}()

	if opts.StatementTimeout > 0 {
		_, err = tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", opts.StatementTimeout.Milliseconds()))
		if err != nil {
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	return fn(ctx, tx)
}
