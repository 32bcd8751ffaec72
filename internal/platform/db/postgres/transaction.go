package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// 読み書きトランザクションを再実行する SQLSTATE です。
const (
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// DefaultMaxRetries は読み書きトランザクションの既定の再実行回数です。
const DefaultMaxRetries = 2

type txContextKey struct{}

type txStarter interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxOption は TransactionManager の設定を変更します。
type TxOption func(*TransactionManager)

// WithLogger はロールバック失敗や再実行を記録するロガーを設定します。
func WithLogger(logger *slog.Logger) TxOption {
	return func(m *TransactionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithIsolation はトランザクションの分離レベルを設定します。空の場合はサーバーの既定値です。
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TransactionManager) {
		m.isolation = level
	}
}

// WithMaxRetries は直列化失敗とデッドロック時の再実行回数を設定します。
func WithMaxRetries(n int) TxOption {
	return func(m *TransactionManager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

// TransactionManager は pgx を用いたトランザクション制御を提供します。
// トランザクションはコンテキストに格納され、リポジトリは QueryerFromContext で取り出します。
type TransactionManager struct {
	pool       txStarter
	isolation  pgx.TxIsoLevel
	maxRetries int
	logger     *slog.Logger
}

// NewTransactionManager は TransactionManager を生成します。
func NewTransactionManager(pool txStarter, opts ...TxOption) *TransactionManager {
	if pool == nil {
		return nil
	}
	m := &TransactionManager{
		pool:       pool,
		maxRetries: DefaultMaxRetries,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithinReadOnly は読み取り専用トランザクションで fn を実行します。
func (m *TransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}
	return m.run(ctx, pgx.TxOptions{IsoLevel: m.isolation, AccessMode: pgx.ReadOnly}, fn)
}

// WithinReadWrite は読み書きトランザクションで fn を実行します。
// 直列化失敗またはデッドロックで中断された場合は最大 maxRetries 回まで fn ごと再実行します。
// 既に外側のトランザクションがある場合は再実行しません。
func (m *TransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if m == nil {
		return fn(ctx)
	}

	opts := pgx.TxOptions{IsoLevel: m.isolation, AccessMode: pgx.ReadWrite}
	_, nested := txFromContext(ctx)

	for attempt := 0; ; attempt++ {
		err := m.run(ctx, opts, fn)
		if nested || attempt >= m.maxRetries || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		m.logger.Warn("retrying transaction", "attempt", attempt+1, "error", err)
	}
}

func (m *TransactionManager) run(ctx context.Context, opts pgx.TxOptions, fn func(context.Context) error) error {
	if fn == nil {
		return fmt.Errorf("postgres: transaction function is required")
	}

	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = m.rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(contextWithTx(ctx, tx)); err != nil {
		if rbErr := m.rollback(ctx, tx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// rollback は呼び出し元のキャンセルに影響されずにロールバックします。
func (m *TransactionManager) rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		m.logger.Error("transaction rollback failed", "error", err)
		return fmt.Errorf("postgres: rollback: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailureCode || pgErr.Code == deadlockDetectedCode
}

func contextWithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}
