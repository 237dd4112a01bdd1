package sqlstore

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type ConnectConfig interface {
	FormatDSN() string
}

// SqlProvider owns the pooled connections. Each logical operation
// borrows one connection for its duration; callers must not hold a
// connection across requests.
type SqlProvider struct {
	master   *sqlx.DB
	replicas []*sqlx.DB
}

// TransactionKey marks an in-flight transaction inside a context so
// nested store calls join it instead of opening their own.
type TransactionKey struct{}

func (s *SqlProvider) GetTxFromCtx(ctx context.Context) *sqlx.Tx {
	if tx, ok := ctx.Value(TransactionKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return nil
}

func (s *SqlProvider) GetMaster() *sqlx.DB {
	return s.master
}

func (s *SqlProvider) GetReplica() *sqlx.DB {
	return s.replicas[rand.Intn(len(s.replicas))]
}

// Transaction runs next inside a database transaction, committing on
// success and rolling back on error or panic. Re-entrant: if ctx
// already carries a transaction, next joins it.
func (s *SqlProvider) Transaction(ctx context.Context, next func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if tx := s.GetTxFromCtx(ctx); tx != nil {
		return next(ctx)
	}

	tx, err := s.GetMaster().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil || err != nil {
			slog.Error("Transaction rollbacked", slog.Any("recover", r), slog.Any("error", err))
			_ = tx.Rollback()
		}
	}()

	if err = next(context.WithValue(ctx, TransactionKey{}, tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SqlProvider) initConnection(conf ConnectConfig) *sqlx.DB {
	return sqlx.MustOpen("postgres", conf.FormatDSN())
}

// MustSetupProvider connects the master and any replicas, panicking
// on a bad DSN. With no replica configs the master serves reads too.
func MustSetupProvider(m ConnectConfig, s ...ConnectConfig) *SqlProvider {
	provider := &SqlProvider{}
	provider.master = provider.initConnection(m)

	if len(s) == 0 {
		provider.replicas = append(provider.replicas, provider.master)
		return provider
	}

	for _, v := range s {
		provider.replicas = append(provider.replicas, provider.initConnection(v))
	}
	return provider
}
