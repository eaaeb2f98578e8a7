package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contalink/internal/core/apperror"
	"contalink/internal/infrastructure/storage/sqlgen"
	"contalink/internal/records"
	"contalink/pkg/logger"
)

// RecordsExecutor runs records requests directly against a backend's
// PostgreSQL mirror, one pool per backend id.
type RecordsExecutor struct {
	pools  *BackendPools
	txOpts TxOptions
	log    *logger.Logger
}

var _ records.Executor = (*RecordsExecutor)(nil)

// NewRecordsExecutor creates an executor over pools.
func NewRecordsExecutor(pools *BackendPools, txOpts TxOptions, log *logger.Logger) *RecordsExecutor {
	return &RecordsExecutor{
		pools:  pools,
		txOpts: txOpts,
		log:    log.WithComponent("records-postgres"),
	}
}

// Execute compiles req, then reads the page and the total in one snapshot.
// Column names come back upper-cased, matching the records API.
func (e *RecordsExecutor) Execute(ctx context.Context, req records.Request) (records.Response, error) {
	ctx, span := tracer.Start(ctx, "records.execute.postgres",
		trace.WithAttributes(
			attribute.String("records.table", req.TableName),
			attribute.Int64("records.backend_id", req.BackendID),
		))
	defer span.End()

	if req.BackendID <= 0 {
		return records.Response{}, apperror.NewTenantRequired("company has no records backend").
			WithCause(records.ErrNoBackend)
	}

	q, err := sqlgen.Compile(req, sqlgen.Postgres)
	if err != nil {
		return records.Response{}, err
	}

	pool, err := e.pools.Get(ctx, req.BackendID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		e.log.WithContext(ctx).Errorw("records pool unavailable", "backend_id", req.BackendID, "error", err)
		return records.Response{}, apperror.NewQueryFailure("records database is unreachable", err)
	}

	var (
		rows  []records.Record
		total int64
	)
	err = NewTxManager(pool).ReadOnly(ctx, e.txOpts, func(ctx context.Context, db Querier) error {
		result, err := db.Query(ctx, q.SQL, q.Args...)
		if err != nil {
			return err
		}
		maps, err := pgx.CollectRows(result, pgx.RowToMap)
		if err != nil {
			return err
		}
		rows = make([]records.Record, len(maps))
		for i, m := range maps {
			rows[i] = upperKeys(m)
		}
		return db.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		e.log.WithContext(ctx).Warnw("records query failed",
			"table", req.TableName,
			"error", err,
		)
		return records.Response{}, apperror.NewQueryFailure(queryMessage(err), err).
			WithDetail("table", req.TableName)
	}

	return records.Response{
		Rows:       rows,
		Pagination: records.NewPagination(total, req.Page, req.PageSize),
	}, nil
}

func upperKeys(m map[string]any) records.Record {
	out := make(records.Record, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

// queryMessage returns the database message for PostgreSQL errors.
func queryMessage(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "records query timed out"
	}
	return "records query failed"
}
