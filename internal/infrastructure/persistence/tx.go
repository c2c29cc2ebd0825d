package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// withTransaction выполняет fn в транзакции. Ошибка или паника откатывают её.
func withTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %w, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// batchInserter копит строки и вставляет их одним INSERT ... VALUES (...), (...).
type batchInserter struct {
	tx          *sqlx.Tx
	query       string
	batchSize   int
	fieldsCount int
	values      []any
	rowCount    int
}

func newBatchInserter(tx *sqlx.Tx, baseQuery string, fieldsCount, batchSize int) *batchInserter {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &batchInserter{
		tx:          tx,
		query:       baseQuery,
		batchSize:   batchSize,
		fieldsCount: fieldsCount,
		values:      make([]any, 0, batchSize*fieldsCount),
	}
}

func (b *batchInserter) Add(ctx context.Context, row ...any) error {
	if len(row) != b.fieldsCount {
		return fmt.Errorf("expected %d fields, got %d", b.fieldsCount, len(row))
	}
	b.values = append(b.values, row...)
	b.rowCount++
	if b.rowCount >= b.batchSize {
		return b.Flush(ctx)
	}
	return nil
}

func (b *batchInserter) Flush(ctx context.Context) error {
	if b.rowCount == 0 {
		return nil
	}
	if _, err := b.tx.ExecContext(ctx, b.query+" VALUES "+placeholders(b.rowCount, b.fieldsCount), b.values...); err != nil {
		return fmt.Errorf("batch insert: %w", err)
	}
	b.values = b.values[:0]
	b.rowCount = 0
	return nil
}

// placeholders: (2, 3) -> "($1, $2, $3), ($4, $5, $6)".
func placeholders(rows, fields int) string {
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := 0; j < fields; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*fields+j+1)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// whereBuilder собирает условия с позиционными параметрами Postgres.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next возвращает номер следующего параметра, например для LIMIT/OFFSET.
func (w *whereBuilder) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
